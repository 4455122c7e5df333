package application

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/artem13815/folio/pkg/nlp"
)

const (
	maxFieldLen  = 500
	maxNoteLen   = 5000
	defaultLimit = 20
	maxLimit     = 100
)

// UseCase инкапсулирует работу с воронкой откликов.
type UseCase interface {
	Create(ctx context.Context, userID uuid.UUID, a Application) (Application, error)
	Get(ctx context.Context, userID, id uuid.UUID) (Application, error)
	List(ctx context.Context, userID uuid.UUID, f Filter) ([]Application, error)
	Update(ctx context.Context, userID, id uuid.UUID, p Patch) (Application, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Advance(ctx context.Context, userID, id uuid.UUID, next Status) (Application, error)
	SetNote(ctx context.Context, userID, id uuid.UUID, stage Status, note string) (Application, error)
	Stats(ctx context.Context, userID uuid.UUID) (Stats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, a Application) (Application, error) {
	a.Company = strings.TrimSpace(a.Company)
	a.Position = strings.TrimSpace(a.Position)
	a.Location = strings.TrimSpace(a.Location)
	a.URL = strings.TrimSpace(a.URL)
	if a.Company == "" || a.Position == "" {
		return Application{}, fmt.Errorf("%w: company and position are required", ErrValidation)
	}
	if err := checkLen(a.Company, a.Position, a.Location, a.URL); err != nil {
		return Application{}, err
	}
	if a.Status == "" {
		a.Status = StatusApplied
	}
	if !a.Status.Valid() {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrValidation, a.Status)
	}

	now := s.now()
	a.ID = uuid.New()
	a.UserID = userID
	if a.AppliedAt.IsZero() {
		a.AppliedAt = now
	}
	a.UpdatedAt = now
	a.Notes = map[Status]string{}
	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, fmt.Errorf("create application: %w", err)
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (Application, error) {
	return s.repo.Get(ctx, userID, id)
}

// List filters by status in the repository and by the free-text query here,
// then applies limit/offset.
func (s *service) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Application, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	all, err := s.repo.ListByUser(ctx, userID, f.Status)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	matched := make([]Application, 0, len(all))
	for _, a := range all {
		if nlp.MatchesAny(f.Query, a.Company, a.Position, a.Location) {
			matched = append(matched, a)
		}
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []Application{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, p Patch) (Application, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	if err := setRequired(&a.Company, p.Company, "company"); err != nil {
		return Application{}, err
	}
	if err := setRequired(&a.Position, p.Position, "position"); err != nil {
		return Application{}, err
	}
	setOptional(&a.Location, p.Location)
	setOptional(&a.URL, p.URL)
	if err := checkLen(a.Company, a.Position, a.Location, a.URL); err != nil {
		return Application{}, err
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, fmt.Errorf("update application: %w", err)
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// Advance moves the application forward to next. Skipping stages is allowed,
// going back or staying in place is not.
func (s *service) Advance(ctx context.Context, userID, id uuid.UUID, next Status) (Application, error) {
	if !next.Valid() {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	if !a.Status.CanAdvanceTo(next) {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, fmt.Errorf("update application: %w", err)
	}
	return a, nil
}

// SetNote stores the note for one stage, replacing the previous one.
func (s *service) SetNote(ctx context.Context, userID, id uuid.UUID, stage Status, note string) (Application, error) {
	if !stage.Valid() {
		return Application{}, fmt.Errorf("%w: unknown stage %q", ErrValidation, stage)
	}
	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxNoteLen {
		return Application{}, fmt.Errorf("%w: note is too long", ErrValidation)
	}
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	now := s.now()
	if err := s.repo.UpsertNote(ctx, a.ID, stage, note, now); err != nil {
		return Application{}, fmt.Errorf("save note: %w", err)
	}
	if a.Notes == nil {
		a.Notes = map[Status]string{}
	}
	a.Notes[stage] = note
	return a, nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("count applications: %w", err)
	}
	return computeStats(counts), nil
}

func computeStats(counts map[Status]int) Stats {
	st := Stats{ByStatus: map[Status]int{}, Reached: map[Status]int{}}
	for _, s := range statusOrder {
		st.ByStatus[s] = counts[s]
		st.Total += counts[s]
	}
	// сколько откликов дошло хотя бы до этапа: суммируем с конца воронки
	acc := 0
	for i := len(statusOrder) - 1; i >= 0; i-- {
		acc += counts[statusOrder[i]]
		st.Reached[statusOrder[i]] = acc
	}
	if st.Total > 0 {
		st.InterviewRate = float64(st.Reached[StatusInterview]) / float64(st.Total)
		st.OfferRate = float64(st.Reached[StatusOffer]) / float64(st.Total)
	}
	return st
}

// setRequired writes the trimmed *v into dst unless v is nil; blank is rejected.
func setRequired(dst, v *string, name string) error {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, name)
	}
	*dst = t
	return nil
}

// setOptional writes the trimmed *v into dst unless v is nil; blank clears the field.
func setOptional(dst, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func checkLen(fields ...string) error {
	for _, f := range fields {
		if utf8.RuneCountInString(f) > maxFieldLen {
			return fmt.Errorf("%w: field is too long", ErrValidation)
		}
	}
	return nil
}
