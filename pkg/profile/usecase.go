package profile

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/artem13815/folio/pkg/nlp"
)

const maxFieldLen = 2000

// UseCase covers reading and manual editing of a profile.
type UseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	Update(ctx context.Context, userID uuid.UUID, patch Patch) (User, error)
	AddSkill(ctx context.Context, userID uuid.UUID, name, category string, level *int) (Skill, error)
}

type service struct {
	store Store
}

func NewService(store Store) UseCase {
	return &service{store: store}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	skills, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list skills: %w", err)
	}
	exps, err := s.store.ListExperiences(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list experiences: %w", err)
	}
	edu, err := s.store.ListEducation(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list education: %w", err)
	}
	p := Profile{User: u, Skills: skills, Experiences: exps, Education: edu}
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
	if p.Experiences == nil {
		p.Experiences = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	return p, nil
}

// Update applies a manual edit. Flags cannot be set through this path.
func (s *service) Update(ctx context.Context, userID uuid.UUID, patch Patch) (User, error) {
	patch.MarkProfileSetupCompleted = false
	patch.MarkResumeUploaded = false
	if patch.Empty() {
		return User{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if err := validatePatch(&patch); err != nil {
		return User{}, err
	}
	if _, err := s.store.FindUser(ctx, userID); err != nil {
		return User{}, err
	}
	if err := s.store.UpdateUser(ctx, userID, patch); err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return s.store.FindUser(ctx, userID)
}

func validatePatch(p *Patch) error {
	for _, f := range []*string{p.Name, p.Title, p.Location, p.Bio, p.Phone, p.ProfileEmail} {
		if f == nil {
			continue
		}
		*f = strings.TrimSpace(*f)
		if utf8.RuneCountInString(*f) > maxFieldLen {
			return fmt.Errorf("%w: field longer than %d characters", ErrValidation, maxFieldLen)
		}
	}
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if p.ProfileEmail != nil && *p.ProfileEmail != "" {
		if _, err := mail.ParseAddress(*p.ProfileEmail); err != nil {
			return fmt.Errorf("%w: invalid profile email", ErrValidation)
		}
	}
	return nil
}

func (s *service) AddSkill(ctx context.Context, userID uuid.UUID, name, category string, level *int) (Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Skill{}, fmt.Errorf("%w: skill name is required", ErrValidation)
	}
	if level != nil && (*level < 1 || *level > 5) {
		return Skill{}, fmt.Errorf("%w: level must be between 1 and 5", ErrValidation)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultSkillCategory
	}
	if _, err := s.store.FindUser(ctx, userID); err != nil {
		return Skill{}, err
	}
	existing, err := s.store.ListSkills(ctx, userID)
	if err != nil {
		return Skill{}, fmt.Errorf("list skills: %w", err)
	}
	for _, sk := range existing {
		if nlp.SameSkill(sk.Name, name) {
			return Skill{}, fmt.Errorf("%w: %s", ErrDuplicateSkill, sk.Name)
		}
	}
	sk := Skill{ID: uuid.New(), UserID: userID, Name: name, Category: category, Level: level}
	if err := s.store.CreateSkill(ctx, sk); err != nil {
		return Skill{}, fmt.Errorf("create skill: %w", err)
	}
	return sk, nil
}
