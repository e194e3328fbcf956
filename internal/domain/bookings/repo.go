package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnknownMaterial = errors.New("bookings: unknown material")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Book пишет запись журнала и двигает остатки материалов в одной транзакции:
// либо проходят обе записи, либо ни одной.
func (r *Repo) Book(ctx context.Context, b Booking) (*Booking, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, type, project_id, created_by, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, b.ID, string(b.Type), b.ProjectID, b.CreatedBy, b.Note, b.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	for i, it := range b.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO booking_items
			(booking_id, position, material_id, code, description, unit, quantity, is_configured, is_manual)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, b.ID, i, it.MaterialID, it.Code, it.Description, it.Unit, it.Quantity, it.IsConfigured, it.IsManual); err != nil {
			return nil, fmt.Errorf("insert booking item %d: %w", i, err)
		}

		// без проверок на минус, как и при ручном списании
		tag, err := tx.Exec(ctx, `UPDATE materials SET stock = stock + $2 WHERE id = $1`,
			it.MaterialID, b.Type.Sign()*it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("adjust stock %s: %w", it.MaterialID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, it.MaterialID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

// Receive: складской приход без привязки к проекту.
func (r *Repo) Receive(ctx context.Context, actor string, items []Item, note string) (*Booking, error) {
	return r.Book(ctx, Booking{Type: TypeIn, CreatedBy: actor, Items: items, Note: note})
}

// Issue: выдача материала на проект (в т.ч. из конфигуратора).
func (r *Repo) Issue(ctx context.Context, actor, projectID string, items []Item, note string) (*Booking, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", ErrInvalidBooking)
	}
	return r.Book(ctx, Booking{Type: TypeOut, ProjectID: projectID, CreatedBy: actor, Items: items, Note: note})
}

// Return: возврат с проекта на склад, встречная запись к Issue.
func (r *Repo) Return(ctx context.Context, actor, projectID string, items []Item, note string) (*Booking, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", ErrInvalidBooking)
	}
	return r.Book(ctx, Booking{Type: TypeIn, ProjectID: projectID, CreatedBy: actor, Items: items, Note: note})
}

const listQuery = `
	SELECT b.id, b.type, b.project_id, b.created_by, b.note, b.created_at,
	       i.material_id, i.code, i.description, i.unit, i.quantity, i.is_configured, i.is_manual
	FROM bookings b
	JOIN booking_items i ON i.booking_id = b.id
`

func (r *Repo) ListAll(ctx context.Context) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, listQuery+` ORDER BY b.created_at, b.id, i.position`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, listQuery+` WHERE b.project_id = $1 ORDER BY b.created_at, b.id, i.position`, projectID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// collect собирает строки join'а обратно в записи, сохраняя порядок выборки.
func collect(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var (
			b  Booking
			it Item
			t  string
		)
		if err := rows.Scan(
			&b.ID, &t, &b.ProjectID, &b.CreatedBy, &b.Note, &b.CreatedAt,
			&it.MaterialID, &it.Code, &it.Description, &it.Unit, &it.Quantity, &it.IsConfigured, &it.IsManual,
		); err != nil {
			return nil, err
		}
		b.Type = Type(t)

		if n := len(out); n > 0 && out[n-1].ID == b.ID {
			out[n-1].Items = append(out[n-1].Items, it)
			continue
		}
		b.Items = []Item{it}
		out = append(out, b)
	}
	return out, rows.Err()
}
