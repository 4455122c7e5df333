package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateSkill = errors.New("skill already exists")
)

// Store: порт доступа к профилю и его дочерним коллекциям.
// Each call is atomic on its own; InTx groups several calls into one
// transaction and rolls all of them back if fn returns an error.
type Store interface {
	FindUser(ctx context.Context, id uuid.UUID) (User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch Patch) error

	ListSkills(ctx context.Context, userID uuid.UUID) ([]Skill, error)
	DeleteAllSkills(ctx context.Context, userID uuid.UUID) error
	CreateSkill(ctx context.Context, s Skill) error

	ListExperiences(ctx context.Context, userID uuid.UUID) ([]Experience, error)
	DeleteAllExperiences(ctx context.Context, userID uuid.UUID) error
	CreateExperience(ctx context.Context, e Experience) error

	ListEducation(ctx context.Context, userID uuid.UUID) ([]Education, error)
	DeleteAllEducation(ctx context.Context, userID uuid.UUID) error
	CreateEducation(ctx context.Context, e Education) error

	InTx(ctx context.Context, fn func(tx Store) error) error
}
