package resume

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/folio/pkg/profile"
	"github.com/artem13815/folio/pkg/profile/profiletest"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newReconciler(store profile.Store) *Reconciler {
	return NewReconciler(store, zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
}

func skillNames(skills []profile.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

func TestReconcile_SkillsReplaced(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	store.SeedSkills(id, "Cobol", "Fortran")

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"skills": []any{"Go", "", "SQL", 42, "  "},
	})
	require.NoError(t, err)

	skills := store.Skills(id)
	assert.Equal(t, []string{"Go", "SQL"}, skillNames(skills))
	for _, s := range skills {
		assert.Equal(t, "General", s.Category)
		assert.Nil(t, s.Level)
	}
	assert.Equal(t, CollectionResult{Status: CollectionReplaced, Count: 2}, out.Skills)
	assert.Equal(t, CollectionSkipped, out.Experience.Status)
	assert.Equal(t, CollectionSkipped, out.Education.Status)
}

func TestReconcile_ScalarsAreSparse(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Old", Phone: "123", Title: "Engineer"})

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"name":     "Ada",
		"phone":    "",
		"summary":  "Analyst",
		"location": nil,
		"email":    "ada@example.com",
	})
	require.NoError(t, err)
	assert.True(t, out.ProfileUpdated)

	u := store.User(id)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "123", u.Phone)
	assert.Equal(t, "Engineer", u.Title)
	assert.Equal(t, "Analyst", u.Bio)
	assert.Equal(t, "ada@example.com", u.ProfileEmail)
	assert.True(t, u.HasCompletedProfileSetup)
	assert.True(t, u.IsUploadResumeForProfile)
}

func TestReconcile_NoScalarsLeavesFlags(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{"skills": []any{"Go"}})
	require.NoError(t, err)
	assert.False(t, out.ProfileUpdated)
	assert.NotContains(t, store.Calls(), "UpdateUser")
	assert.False(t, store.User(id).HasCompletedProfileSetup)
}

func TestReconcile_ScalarFailureAborts(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	store.SeedSkills(id, "Cobol")
	store.FailOp("UpdateUser", 0, errors.New("db down"))

	_, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"name":   "Ada",
		"skills": []any{"Go"},
	})
	assert.ErrorIs(t, err, ErrProfileUpdate)
	assert.Equal(t, []string{"Cobol"}, skillNames(store.Skills(id)))
	assert.NotContains(t, store.Calls(), "DeleteAllSkills")
}

func TestReconcile_BadDateUsesReconcileTime(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	_, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"workExperience": []any{
			map[string]any{"company": "ACME", "startDate": "not-a-date", "endDate": "2022-05-01"},
		},
	})
	require.NoError(t, err)

	exps := store.Experiences(id)
	require.Len(t, exps, 1)
	assert.True(t, fixedNow.Equal(exps[0].StartDate))
	require.NotNil(t, exps[0].EndDate)
	assert.Equal(t, time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC), *exps[0].EndDate)
}

func TestReconcile_ExperienceDefaults(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"workExperience": []any{},
		"experience": []any{
			"not an object",
			map[string]any{"title": "Analyst", "isCurrentPosition": "yes"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Experience.Count)

	exps := store.Experiences(id)
	require.Len(t, exps, 2)

	assert.Equal(t, "Untitled Position", exps[0].Position)
	assert.Equal(t, "Unknown Company", exps[0].Company)
	assert.Equal(t, "", exps[0].Location)
	assert.Equal(t, "", exps[0].Description)
	assert.False(t, exps[0].IsCurrentPosition)
	assert.True(t, fixedNow.Equal(exps[0].StartDate))
	assert.True(t, fixedNow.Equal(*exps[0].EndDate))

	assert.Equal(t, "Analyst", exps[1].Position)
	assert.True(t, exps[1].IsCurrentPosition)
}

func TestReconcile_EducationDefaults(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	_, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"education": []any{
			map[string]any{},
			map[string]any{"institution": "MIT", "degree": "BSc", "startYear": "2010", "endYear": 2014.0},
		},
	})
	require.NoError(t, err)

	edu := store.EducationRows(id)
	require.Len(t, edu, 2)
	assert.Equal(t, profile.Education{
		ID: edu[0].ID, UserID: id,
		Institution: "Institution", Degree: "Degree", FieldOfStudy: "Unknown Field",
		StartYear: 2021, EndYear: 2025,
	}, edu[0])
	assert.Equal(t, "MIT", edu[1].Institution)
	assert.Equal(t, 2010, edu[1].StartYear)
	assert.Equal(t, 2014, edu[1].EndYear)
}

func TestReconcile_ImplausibleYearsUseDefaults(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"education": []any{
			map[string]any{"institution": "MIT", "startYear": json.Number("1e12"), "endYear": "99999999999"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, CollectionReplaced, out.Education.Status)

	edu := store.EducationRows(id)
	require.Len(t, edu, 1)
	assert.Equal(t, 2021, edu[0].StartYear)
	assert.Equal(t, 2025, edu[0].EndYear)
}

func TestReconcile_CollectionFailureIsIsolated(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})
	store.SeedSkills(id, "Cobol", "Fortran")
	store.FailOp("CreateSkill", 1, errors.New("constraint violation"))

	out, err := newReconciler(store).Reconcile(context.Background(), id, Extraction{
		"name":           "Ada Lovelace",
		"skills":         []any{"Go", "Rust", "SQL"},
		"workExperience": []any{map[string]any{"company": "ACME"}},
		"education":      []any{map[string]any{"institution": "MIT"}},
	})
	require.NoError(t, err)
	assert.True(t, out.Partial())

	assert.Equal(t, CollectionFailed, out.Skills.Status)
	assert.Contains(t, out.Skills.Error, "constraint violation")
	assert.Equal(t, []string{"Cobol", "Fortran"}, skillNames(store.Skills(id)), "failed collection keeps its previous rows")
	assert.Equal(t, 1, store.Rollbacks)

	assert.Equal(t, CollectionReplaced, out.Experience.Status)
	assert.Len(t, store.Experiences(id), 1)
	assert.Equal(t, CollectionReplaced, out.Education.Status)
	assert.Len(t, store.EducationRows(id), 1)
	assert.Equal(t, "Ada Lovelace", store.User(id).Name)
}

func TestReconcile_ScopedToUser(t *testing.T) {
	store := profiletest.New()
	a := store.AddUser(profile.User{Name: "A"})
	b := store.AddUser(profile.User{Name: "B"})
	store.SeedSkills(b, "Kept")

	_, err := newReconciler(store).Reconcile(context.Background(), a, Extraction{"skills": []any{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept"}, skillNames(store.Skills(b)))
	assert.Equal(t, []string{"Go"}, skillNames(store.Skills(a)))

	_, err = newReconciler(store).Reconcile(context.Background(), uuid.New(), Extraction{"name": "Ghost"})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestReconcile_FallbackPayload(t *testing.T) {
	store := profiletest.New()
	id := store.AddUser(profile.User{Name: "Ada"})

	out, err := newReconciler(store).Reconcile(context.Background(), id, FallbackExtraction())
	require.NoError(t, err)
	assert.False(t, out.Partial())
	assert.Equal(t, 6, out.Skills.Count)
	assert.Equal(t, 2, out.Experience.Count)
	assert.Equal(t, 1, out.Education.Count)

	edu := store.EducationRows(id)
	require.Len(t, edu, 1)
	assert.Equal(t, 2014, edu[0].StartYear)
	assert.Equal(t, "John Doe", store.User(id).Name)
}
