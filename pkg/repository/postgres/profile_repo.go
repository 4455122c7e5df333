package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/folio/pkg/profile"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileStore implements profile.Store. The value returned to an InTx
// callback runs every call on the transaction.
type ProfileStore struct {
	pool *pgxpool.Pool // nil inside a transaction
	q    querier
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool, q: pool}
}

func (s *ProfileStore) InTx(ctx context.Context, fn func(tx profile.Store) error) error {
	if s.pool == nil {
		// уже внутри транзакции
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&ProfileStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *ProfileStore) FindUser(ctx context.Context, id uuid.UUID) (profile.User, error) {
	row := s.q.QueryRow(ctx, `
SELECT id, email, name, title, location, bio, phone, profile_email,
	has_completed_profile_setup, is_upload_resume_for_profile, created_at, updated_at
FROM users WHERE id = $1
`, id)
	var u profile.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Title, &u.Location, &u.Bio, &u.Phone, &u.ProfileEmail,
		&u.HasCompletedProfileSetup, &u.IsUploadResumeForProfile, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.User{}, profile.ErrNotFound
		}
		return profile.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

// UpdateUser writes only the non-nil fields of patch. Flags are OR-ed in,
// so they can be switched on but never off here.
func (s *ProfileStore) UpdateUser(ctx context.Context, id uuid.UUID, patch profile.Patch) error {
	cmd, err := s.q.Exec(ctx, `
UPDATE users SET
	name = COALESCE($2, name),
	title = COALESCE($3, title),
	location = COALESCE($4, location),
	bio = COALESCE($5, bio),
	phone = COALESCE($6, phone),
	profile_email = COALESCE($7, profile_email),
	has_completed_profile_setup = has_completed_profile_setup OR $8,
	is_upload_resume_for_profile = is_upload_resume_for_profile OR $9,
	updated_at = $10
WHERE id = $1
`, id, patch.Name, patch.Title, patch.Location, patch.Bio, patch.Phone, patch.ProfileEmail,
		patch.MarkProfileSetupCompleted, patch.MarkResumeUploaded, time.Now().UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (s *ProfileStore) ListSkills(ctx context.Context, userID uuid.UUID) ([]profile.Skill, error) {
	rows, err := s.q.Query(ctx, `
SELECT id, user_id, name, category, level FROM skills WHERE user_id = $1 ORDER BY created_at, name
`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.Skill, error) {
		var sk profile.Skill
		err := row.Scan(&sk.ID, &sk.UserID, &sk.Name, &sk.Category, &sk.Level)
		return sk, err
	})
}

func (s *ProfileStore) DeleteAllSkills(ctx context.Context, userID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM skills WHERE user_id = $1`, userID)
	return err
}

func (s *ProfileStore) CreateSkill(ctx context.Context, sk profile.Skill) error {
	if sk.ID == uuid.Nil {
		sk.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
INSERT INTO skills (id, user_id, name, category, level, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, sk.ID, sk.UserID, sk.Name, sk.Category, sk.Level, time.Now().UTC())
	return err
}

func (s *ProfileStore) ListExperiences(ctx context.Context, userID uuid.UUID) ([]profile.Experience, error) {
	rows, err := s.q.Query(ctx, `
SELECT id, user_id, position, company, location, start_date, end_date, description, is_current_position
FROM experiences WHERE user_id = $1 ORDER BY start_date DESC
`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.Experience, error) {
		var e profile.Experience
		err := row.Scan(&e.ID, &e.UserID, &e.Position, &e.Company, &e.Location,
			&e.StartDate, &e.EndDate, &e.Description, &e.IsCurrentPosition)
		e.StartDate = e.StartDate.UTC()
		if e.EndDate != nil {
			end := e.EndDate.UTC()
			e.EndDate = &end
		}
		return e, err
	})
}

func (s *ProfileStore) DeleteAllExperiences(ctx context.Context, userID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM experiences WHERE user_id = $1`, userID)
	return err
}

func (s *ProfileStore) CreateExperience(ctx context.Context, e profile.Experience) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
INSERT INTO experiences (id, user_id, position, company, location, start_date, end_date, description, is_current_position, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, e.ID, e.UserID, e.Position, e.Company, e.Location, e.StartDate, e.EndDate, e.Description, e.IsCurrentPosition, time.Now().UTC())
	return err
}

func (s *ProfileStore) ListEducation(ctx context.Context, userID uuid.UUID) ([]profile.Education, error) {
	rows, err := s.q.Query(ctx, `
SELECT id, user_id, institution, degree, field_of_study, start_year, end_year, description
FROM education WHERE user_id = $1 ORDER BY end_year DESC, start_year DESC
`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (profile.Education, error) {
		var e profile.Education
		err := row.Scan(&e.ID, &e.UserID, &e.Institution, &e.Degree, &e.FieldOfStudy,
			&e.StartYear, &e.EndYear, &e.Description)
		return e, err
	})
}

func (s *ProfileStore) DeleteAllEducation(ctx context.Context, userID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM education WHERE user_id = $1`, userID)
	return err
}

func (s *ProfileStore) CreateEducation(ctx context.Context, e profile.Education) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
INSERT INTO education (id, user_id, institution, degree, field_of_study, start_year, end_year, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, e.ID, e.UserID, e.Institution, e.Degree, e.FieldOfStudy, e.StartYear, e.EndYear, e.Description, time.Now().UTC())
	return err
}

var _ profile.Store = (*ProfileStore)(nil)
