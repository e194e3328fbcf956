package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("materials: not found")
	ErrDuplicate = errors.New("materials: id already exists")
)

// unique_violation
const pgUniqueViolation = "23505"

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectCols = `id, code, description, unit, items_per_unit, stock, created_at`

func scanMaterial(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(
		&m.ID,
		&m.Code,
		&m.Description,
		&m.Unit,
		&m.ItemsPerUnit,
		&m.Stock,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Normalize()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (id, code, description, unit, items_per_unit, stock)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+selectCols,
		m.ID, m.Code, m.Description, m.Unit, m.ItemsPerUnit, m.Stock)
	created, err := scanMaterial(row)
	if err != nil {
		return nil, createError(m.ID, err)
	}
	return created, nil
}

func createError(id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Material, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectCols+` FROM materials WHERE id = $1`, id)
	m, err := scanMaterial(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectCols+` FROM materials ORDER BY code, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SearchByCode ищет по части артикула или описания, без учёта регистра.
func (r *Repo) SearchByCode(ctx context.Context, q string) ([]Material, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	rows, err := r.pool.Query(ctx, `
		SELECT `+selectCols+`
		FROM materials
		WHERE LOWER(code) LIKE $1 OR LOWER(description) LIKE $1
		ORDER BY code, id
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// AdjustStock меняет остаток на delta без проверок (остаток может стать отрицательным).
func (r *Repo) AdjustStock(ctx context.Context, id string, delta int) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET stock = stock + $2
		WHERE id = $1
		RETURNING `+selectCols, id, delta)
	m, err := scanMaterial(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}
