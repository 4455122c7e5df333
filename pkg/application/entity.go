package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("application not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status: этап воронки отклика. Порядок этапов задан statusOrder.
type Status string

const (
	StatusApplied        Status = "applied"
	StatusPhoneScreening Status = "phone_screening"
	StatusInterview      Status = "interview"
	StatusOffer          Status = "offer"
)

var statusOrder = []Status{StatusApplied, StatusPhoneScreening, StatusInterview, StatusOffer}

// Statuses returns all pipeline stages in order.
func Statuses() []Status {
	return append([]Status(nil), statusOrder...)
}

// rank returns the position of s in the pipeline or -1 for unknown values.
func (s Status) rank() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool { return s.rank() >= 0 }

// CanAdvanceTo reports whether moving from s to next goes forward in the pipeline.
func (s Status) CanAdvanceTo(next Status) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// Application: отклик пользователя на вакансию.
type Application struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"userId"`
	Company   string            `json:"company"`
	Position  string            `json:"position"`
	Location  string            `json:"location"`
	URL       string            `json:"url"`
	Status    Status            `json:"status"`
	AppliedAt time.Time         `json:"appliedAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Notes     map[Status]string `json:"notes"`
}

// Patch edits descriptive fields; nil leaves a field unchanged.
type Patch struct {
	Company  *string `json:"company,omitempty"`
	Position *string `json:"position,omitempty"`
	Location *string `json:"location,omitempty"`
	URL      *string `json:"url,omitempty"`
}

type Filter struct {
	Status Status // empty means any
	Query  string
	Limit  int
	Offset int
}

type Stats struct {
	Total         int            `json:"total"`
	ByStatus      map[Status]int `json:"byStatus"`
	Reached       map[Status]int `json:"reached"` // applications that got at least this far
	InterviewRate float64        `json:"interviewRate"`
	OfferRate     float64        `json:"offerRate"`
}

// Repository: порт хранения откликов. Все методы ограничены владельцем.
type Repository interface {
	Create(ctx context.Context, a Application) error
	Get(ctx context.Context, userID, id uuid.UUID) (Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status Status) ([]Application, error)
	Update(ctx context.Context, a Application) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	UpsertNote(ctx context.Context, id uuid.UUID, stage Status, note string, at time.Time) error
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[Status]int, error)
}
