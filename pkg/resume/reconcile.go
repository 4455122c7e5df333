package resume

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/artem13815/folio/pkg/profile"
)

const (
	defaultPosition     = "Untitled Position"
	defaultCompany      = "Unknown Company"
	defaultDegree       = "Degree"
	defaultInstitution  = "Institution"
	defaultFieldOfStudy = "Unknown Field"
)

type CollectionStatus string

const (
	CollectionSkipped  CollectionStatus = "skipped"  // nothing usable in the extraction
	CollectionReplaced CollectionStatus = "replaced" // cleared and rebuilt
	CollectionFailed   CollectionStatus = "failed"   // rolled back, previous rows kept
)

type CollectionResult struct {
	Status CollectionStatus `json:"status"`
	Count  int              `json:"count"`
	Error  string           `json:"error,omitempty"`
}

// ReconcileOutcome reports what happened to each part of the profile.
type ReconcileOutcome struct {
	ProfileUpdated bool             `json:"profileUpdated"`
	Skills         CollectionResult `json:"skills"`
	Experience     CollectionResult `json:"experience"`
	Education      CollectionResult `json:"education"`
}

// Partial reports whether at least one collection failed to persist.
func (o ReconcileOutcome) Partial() bool {
	return o.Skills.Status == CollectionFailed ||
		o.Experience.Status == CollectionFailed ||
		o.Education.Status == CollectionFailed
}

// Reconciler merges an Extraction into a user's stored profile.
type Reconciler struct {
	store profile.Store
	now   func() time.Time
	log   zerolog.Logger
}

func NewReconciler(store profile.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log.With().Str("component", "reconciler").Logger(),
	}
}

// WithClock replaces the time source used for date defaults.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile applies res to the profile of userID:
//
//  1. present scalar fields are written in one sparse update together with
//     both setup flags; a failure here aborts the reconciliation;
//  2. skills, experience and education are each replaced wholesale
//     (delete all, then recreate) inside their own transaction.
//
// A failing collection is rolled back, logged and reported in the outcome;
// it does not stop the other collections and does not undo step 1.
func (r *Reconciler) Reconcile(ctx context.Context, userID uuid.UUID, res Extraction) (ReconcileOutcome, error) {
	now := r.now()
	out := ReconcileOutcome{
		Skills:     CollectionResult{Status: CollectionSkipped},
		Experience: CollectionResult{Status: CollectionSkipped},
		Education:  CollectionResult{Status: CollectionSkipped},
	}
	log := r.log.With().Str("user_id", userID.String()).Logger()

	if patch := scalarPatch(res); !patch.Empty() {
		patch.MarkProfileSetupCompleted = true
		patch.MarkResumeUploaded = true
		if err := r.store.UpdateUser(ctx, userID, patch); err != nil {
			return out, fmt.Errorf("%w: %w", ErrProfileUpdate, err)
		}
		out.ProfileUpdated = true
	}

	if items, ok := res.List("skills"); ok {
		skills := skillsFrom(userID, items)
		out.Skills = r.replace(ctx, log, "skills", func(tx profile.Store) error {
			if err := tx.DeleteAllSkills(ctx, userID); err != nil {
				return fmt.Errorf("delete skills: %w", err)
			}
			for _, s := range skills {
				if err := tx.CreateSkill(ctx, s); err != nil {
					return fmt.Errorf("create skill %q: %w", s.Name, err)
				}
			}
			return nil
		}, len(skills))
	}

	if items, ok := res.List("workExperience", "experience"); ok {
		exps := experiencesFrom(userID, items, now)
		out.Experience = r.replace(ctx, log, "experience", func(tx profile.Store) error {
			if err := tx.DeleteAllExperiences(ctx, userID); err != nil {
				return fmt.Errorf("delete experiences: %w", err)
			}
			for _, e := range exps {
				if err := tx.CreateExperience(ctx, e); err != nil {
					return fmt.Errorf("create experience %q: %w", e.Position, err)
				}
			}
			return nil
		}, len(exps))
	}

	if items, ok := res.List("education"); ok {
		edu := educationFrom(userID, items, now)
		out.Education = r.replace(ctx, log, "education", func(tx profile.Store) error {
			if err := tx.DeleteAllEducation(ctx, userID); err != nil {
				return fmt.Errorf("delete education: %w", err)
			}
			for _, e := range edu {
				if err := tx.CreateEducation(ctx, e); err != nil {
					return fmt.Errorf("create education %q: %w", e.Institution, err)
				}
			}
			return nil
		}, len(edu))
	}

	return out, nil
}

func (r *Reconciler) replace(ctx context.Context, log zerolog.Logger, name string, fn func(tx profile.Store) error, count int) CollectionResult {
	if err := r.store.InTx(ctx, fn); err != nil {
		log.Error().Err(err).Str("collection", name).Msg("collection replace failed, previous rows kept")
		return CollectionResult{Status: CollectionFailed, Error: err.Error()}
	}
	return CollectionResult{Status: CollectionReplaced, Count: count}
}

func scalarPatch(res Extraction) profile.Patch {
	var p profile.Patch
	if v, ok := res.Text("name"); ok {
		p.Name = &v
	}
	if v, ok := res.Text("profile_email", "email"); ok {
		p.ProfileEmail = &v
	}
	if v, ok := res.Text("phone"); ok {
		p.Phone = &v
	}
	if v, ok := res.Text("bio", "summary"); ok {
		p.Bio = &v
	}
	if v, ok := res.Text("title"); ok {
		p.Title = &v
	}
	if v, ok := res.Text("location"); ok {
		p.Location = &v
	}
	return p
}

// skillsFrom keeps non-blank string elements only.
func skillsFrom(userID uuid.UUID, items []any) []profile.Skill {
	out := make([]profile.Skill, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		name, ok := scalarString(s)
		if !ok {
			continue
		}
		out = append(out, profile.Skill{
			ID:       uuid.New(),
			UserID:   userID,
			Name:     name,
			Category: profile.DefaultSkillCategory,
		})
	}
	return out
}

func experiencesFrom(userID uuid.UUID, items []any, now time.Time) []profile.Experience {
	out := make([]profile.Experience, 0, len(items))
	for _, it := range items {
		m := asObject(it)
		start, ok := parseDate(m["startDate"])
		if !ok {
			start = now
		}
		end, ok := parseDate(m["endDate"])
		if !ok {
			end = now
		}
		out = append(out, profile.Experience{
			ID:                uuid.New(),
			UserID:            userID,
			Position:          textOr(m, defaultPosition, "position", "title"),
			Company:           textOr(m, defaultCompany, "company"),
			Location:          textOr(m, "", "location"),
			StartDate:         start,
			EndDate:           &end,
			Description:       textOr(m, "", "description"),
			IsCurrentPosition: parseBool(m["isCurrentPosition"]),
		})
	}
	return out
}

func educationFrom(userID uuid.UUID, items []any, now time.Time) []profile.Education {
	year := now.Year()
	out := make([]profile.Education, 0, len(items))
	for _, it := range items {
		m := asObject(it)
		start, ok := parseYear(m["startYear"])
		if !ok {
			start = year - 4
		}
		end, ok := parseYear(m["endYear"])
		if !ok {
			end = year
		}
		out = append(out, profile.Education{
			ID:           uuid.New(),
			UserID:       userID,
			Institution:  textOr(m, defaultInstitution, "institution"),
			Degree:       textOr(m, defaultDegree, "degree"),
			FieldOfStudy: textOr(m, defaultFieldOfStudy, "fieldOfStudy"),
			StartYear:    start,
			EndYear:      end,
			Description:  textOr(m, "", "description"),
		})
	}
	return out
}
