package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/folio/pkg/application"
)

// ApplicationRepository хранит отклики и заметки по этапам.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// заметки собираются в один JSON-объект {stage: note}
const selectApplication = `
SELECT a.id, a.user_id, a.company, a.position, a.location, a.url, a.status, a.applied_at, a.updated_at,
	COALESCE(json_object_agg(n.stage, n.note) FILTER (WHERE n.stage IS NOT NULL), '{}') AS notes
FROM applications a
LEFT JOIN application_notes n ON n.application_id = a.id
`

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO applications (id, user_id, company, position, location, url, status, applied_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, a.ID, a.UserID, a.Company, a.Position, a.Location, a.URL, string(a.Status), a.AppliedAt, a.UpdatedAt)
	return err
}

func (r *ApplicationRepository) Get(ctx context.Context, userID, id uuid.UUID) (application.Application, error) {
	rows, err := r.pool.Query(ctx, selectApplication+`
WHERE a.id = $1 AND a.user_id = $2
GROUP BY a.id
`, id, userID)
	if err != nil {
		return application.Application{}, err
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanApplication)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, status application.Status) ([]application.Application, error) {
	rows, err := r.pool.Query(ctx, selectApplication+`
WHERE a.user_id = $1 AND ($2 = '' OR a.status = $2)
GROUP BY a.id
ORDER BY a.updated_at DESC
`, userID, string(status))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanApplication)
}

func (r *ApplicationRepository) Update(ctx context.Context, a application.Application) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE applications
SET company = $3, position = $4, location = $5, url = $6, status = $7, updated_at = $8
WHERE id = $1 AND user_id = $2
`, a.ID, a.UserID, a.Company, a.Position, a.Location, a.URL, string(a.Status), a.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

// UpsertNote also bumps the application's updated_at in the same transaction.
func (r *ApplicationRepository) UpsertNote(ctx context.Context, id uuid.UUID, stage application.Status, note string, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO application_notes (application_id, stage, note, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (application_id, stage) DO UPDATE SET note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
`, id, string(stage), note, at)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE applications SET updated_at = $2 WHERE id = $1`, id, at); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[application.Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[application.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[application.Status(status)] = n
	}
	return out, rows.Err()
}

func scanApplication(row pgx.CollectableRow) (application.Application, error) {
	var a application.Application
	var status string
	var notes []byte
	if err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.Location, &a.URL,
		&status, &a.AppliedAt, &a.UpdatedAt, &notes); err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	a.AppliedAt = a.AppliedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	a.Notes = map[application.Status]string{}
	if err := json.Unmarshal(notes, &a.Notes); err != nil {
		return application.Application{}, fmt.Errorf("decode notes: %w", err)
	}
	return a, nil
}

var _ application.Repository = (*ApplicationRepository)(nil)
