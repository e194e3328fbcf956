package completed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT project_id, material_id, checked_by, checked_at
		FROM completed_items
		WHERE project_id = $1
		ORDER BY checked_at, material_id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProjectID, &it.MaterialID, &it.CheckedBy, &it.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Mark ставит отметку; при повторе побеждает последний писатель.
func (r *Repo) Mark(ctx context.Context, it Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO completed_items (project_id, material_id, checked_by, checked_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (project_id, material_id)
		DO UPDATE SET checked_by = EXCLUDED.checked_by, checked_at = EXCLUDED.checked_at
	`, it.ProjectID, it.MaterialID, it.CheckedBy, it.CheckedAt)
	return err
}

func (r *Repo) Unmark(ctx context.Context, projectID, materialID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM completed_items WHERE project_id = $1 AND material_id = $2
	`, projectID, materialID)
	return err
}
