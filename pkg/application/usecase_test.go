package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	apps map[uuid.UUID]Application
}

func newMemRepo() *memRepo { return &memRepo{apps: map[uuid.UUID]Application{}} }

func (r *memRepo) Create(ctx context.Context, a Application) error {
	r.apps[a.ID] = a
	return nil
}

func (r *memRepo) Get(ctx context.Context, userID, id uuid.UUID) (Application, error) {
	a, ok := r.apps[id]
	if !ok || a.UserID != userID {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (r *memRepo) ListByUser(ctx context.Context, userID uuid.UUID, status Status) ([]Application, error) {
	var out []Application
	for _, a := range r.apps {
		if a.UserID == userID && (status == "" || a.Status == status) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out, nil
}

func (r *memRepo) Update(ctx context.Context, a Application) error {
	if _, ok := r.apps[a.ID]; !ok {
		return ErrNotFound
	}
	r.apps[a.ID] = a
	return nil
}

func (r *memRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := r.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(r.apps, id)
	return nil
}

func (r *memRepo) UpsertNote(ctx context.Context, id uuid.UUID, stage Status, note string, at time.Time) error {
	a := r.apps[id]
	notes := map[Status]string{}
	for k, v := range a.Notes {
		notes[k] = v
	}
	notes[stage] = note
	a.Notes = notes
	r.apps[id] = a
	return nil
}

func (r *memRepo) CountByStatus(ctx context.Context, userID uuid.UUID) (map[Status]int, error) {
	out := map[Status]int{}
	for _, a := range r.apps {
		if a.UserID == userID {
			out[a.Status]++
		}
	}
	return out, nil
}

func TestStatus_CanAdvanceTo(t *testing.T) {
	assert.True(t, StatusApplied.CanAdvanceTo(StatusPhoneScreening))
	assert.True(t, StatusApplied.CanAdvanceTo(StatusOffer))
	assert.False(t, StatusInterview.CanAdvanceTo(StatusInterview))
	assert.False(t, StatusOffer.CanAdvanceTo(StatusApplied))
	assert.False(t, Status("rejected").CanAdvanceTo(StatusOffer))
	assert.Equal(t, []Status{StatusApplied, StatusPhoneScreening, StatusInterview, StatusOffer}, Statuses())
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	user := uuid.New()

	a, err := svc.Create(ctx, user, Application{Company: " ACME ", Position: "Backend Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "ACME", a.Company)
	assert.Equal(t, StatusApplied, a.Status)
	assert.False(t, a.AppliedAt.IsZero())
	assert.Equal(t, user, a.UserID)

	_, err = svc.Create(ctx, user, Application{Company: "ACME"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, user, Application{Company: "ACME", Position: "Dev", Status: "hired"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Advance(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	user := uuid.New()
	a, err := svc.Create(ctx, user, Application{Company: "ACME", Position: "Dev"})
	require.NoError(t, err)

	a, err = svc.Advance(ctx, user, a.ID, StatusInterview)
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, a.Status)

	_, err = svc.Advance(ctx, user, a.ID, StatusInterview)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Advance(ctx, user, a.ID, StatusPhoneScreening)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Advance(ctx, user, a.ID, "ghosted")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Advance(ctx, uuid.New(), a.ID, StatusOffer)
	assert.ErrorIs(t, err, ErrNotFound, "other users cannot touch the application")
	assert.Equal(t, StatusInterview, repo.apps[a.ID].Status)
}

func TestService_SetNote(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	user := uuid.New()
	a, err := svc.Create(ctx, user, Application{Company: "ACME", Position: "Dev"})
	require.NoError(t, err)

	_, err = svc.SetNote(ctx, user, a.ID, StatusPhoneScreening, "first call")
	require.NoError(t, err)
	got, err := svc.SetNote(ctx, user, a.ID, StatusPhoneScreening, " second call ")
	require.NoError(t, err)
	assert.Equal(t, map[Status]string{StatusPhoneScreening: "second call"}, got.Notes)

	_, err = svc.SetNote(ctx, user, a.ID, "lunch", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_ListSearchAndPaging(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	user := uuid.New()
	for _, c := range []struct{ company, position string }{
		{"Acme Corp", "Go Developer"},
		{"Beta", "Frontend Engineer"},
		{"Cyberdyne", "Senior Go Engineer"},
	} {
		_, err := svc.Create(ctx, user, Application{Company: c.company, Position: c.position})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, uuid.New(), Application{Company: "Other", Position: "Go Developer"})
	require.NoError(t, err)

	got, err := svc.List(ctx, user, Filter{Query: "go"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Corp", got[0].Company)
	assert.Equal(t, "Cyberdyne", got[1].Company)

	got, err = svc.List(ctx, user, Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0].Company)

	got, err = svc.List(ctx, user, Filter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.List(ctx, user, Filter{Status: "unknown"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Update(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	user := uuid.New()
	a, err := svc.Create(ctx, user, Application{Company: "ACME", Position: "Dev", Location: "Berlin"})
	require.NoError(t, err)

	pos := "Staff Dev"
	got, err := svc.Update(ctx, user, a.ID, Patch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, "Staff Dev", got.Position)
	assert.Equal(t, "Berlin", got.Location)

	empty := " "
	_, err = svc.Update(ctx, user, a.ID, Patch{Company: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	// необязательные поля: пробелы обрезаются, пустая строка очищает
	url := "  https://acme.example/jobs/1 "
	got, err = svc.Update(ctx, user, a.ID, Patch{Location: &empty, URL: &url})
	require.NoError(t, err)
	assert.Equal(t, "", got.Location)
	assert.Equal(t, "https://acme.example/jobs/1", got.URL)
	assert.Equal(t, "Staff Dev", got.Position)
}

func TestComputeStats(t *testing.T) {
	st := computeStats(map[Status]int{
		StatusApplied:        5,
		StatusPhoneScreening: 2,
		StatusInterview:      2,
		StatusOffer:          1,
	})
	assert.Equal(t, 10, st.Total)
	assert.Equal(t, 10, st.Reached[StatusApplied])
	assert.Equal(t, 3, st.Reached[StatusInterview])
	assert.InDelta(t, 0.3, st.InterviewRate, 1e-9)
	assert.InDelta(t, 0.1, st.OfferRate, 1e-9)

	zero := computeStats(nil)
	assert.Zero(t, zero.Total)
	assert.Zero(t, zero.InterviewRate)
	assert.Zero(t, zero.OfferRate)
	assert.Equal(t, 0, zero.ByStatus[StatusOffer])
}
