package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/projects"
	"github.com/Spok95/solar-bom/internal/tracker"
)

type memMaterials struct {
	mu    sync.Mutex
	items []materials.Material
	seq   int
}

var _ MaterialStore = (*memMaterials)(nil)

func (m *memMaterials) List(context.Context) ([]materials.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]materials.Material(nil), m.items...), nil
}

func (m *memMaterials) Create(_ context.Context, mat materials.Material) (*materials.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mat.ID == "" {
		m.seq++
		mat.ID = fmt.Sprintf("mat-%d", m.seq)
	}
	for _, it := range m.items {
		if it.ID == mat.ID {
			return nil, fmt.Errorf("%w: %s", materials.ErrDuplicate, mat.ID)
		}
	}
	mat.Normalize()
	m.items = append(m.items, mat)
	return &mat, nil
}

func (m *memMaterials) SearchByCode(_ context.Context, q string) ([]materials.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	var out []materials.Material
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Code), q) || strings.Contains(strings.ToLower(it.Description), q) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memMaterials) GetByID(_ context.Context, id string) (*materials.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, materials.ErrNotFound
}

func (m *memMaterials) AdjustStock(_ context.Context, id string, delta int) (*materials.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Stock += delta
			out := m.items[i]
			return &out, nil
		}
	}
	return nil, materials.ErrNotFound
}

func (m *memMaterials) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

type memBookings struct {
	mu        sync.Mutex
	materials *memMaterials
	items     []bookings.Booking
	seq       int
}

var _ BookingStore = (*memBookings)(nil)

func (b *memBookings) Book(_ context.Context, bk bookings.Booking) (*bookings.Booking, error) {
	if err := bk.Validate(); err != nil {
		return nil, err
	}
	for _, it := range bk.Items {
		if !b.materials.has(it.MaterialID) {
			return nil, fmt.Errorf("%w: %s", bookings.ErrUnknownMaterial, it.MaterialID)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	bk.ID = fmt.Sprintf("bk-%d", b.seq)
	bk.CreatedAt = time.Date(2024, 1, 1, 0, 0, b.seq, 0, time.UTC)
	b.items = append(b.items, bk)
	return &bk, nil
}

func (b *memBookings) Receive(ctx context.Context, actor string, items []bookings.Item, note string) (*bookings.Booking, error) {
	return b.Book(ctx, bookings.Booking{Type: bookings.TypeIn, CreatedBy: actor, Items: items, Note: note})
}

func (b *memBookings) Issue(ctx context.Context, actor, projectID string, items []bookings.Item, note string) (*bookings.Booking, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", bookings.ErrInvalidBooking)
	}
	return b.Book(ctx, bookings.Booking{Type: bookings.TypeOut, ProjectID: projectID, CreatedBy: actor, Items: items, Note: note})
}

func (b *memBookings) Return(ctx context.Context, actor, projectID string, items []bookings.Item, note string) (*bookings.Booking, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id required", bookings.ErrInvalidBooking)
	}
	return b.Book(ctx, bookings.Booking{Type: bookings.TypeIn, ProjectID: projectID, CreatedBy: actor, Items: items, Note: note})
}

func (b *memBookings) ListAll(context.Context) ([]bookings.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bookings.Booking(nil), b.items...), nil
}

func (b *memBookings) ListByProject(_ context.Context, projectID string) ([]bookings.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []bookings.Booking{}
	for _, bk := range b.items {
		if bk.ProjectID == projectID {
			out = append(out, bk)
		}
	}
	return out, nil
}

type memCompleted struct {
	mu    sync.Mutex
	items []completed.Item
}

var _ tracker.Store = (*memCompleted)(nil)

func (m *memCompleted) ListByProject(_ context.Context, projectID string) ([]completed.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []completed.Item{}
	for _, it := range m.items {
		if it.ProjectID == projectID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCompleted) Mark(_ context.Context, it completed.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.items {
		if cur.ProjectID == it.ProjectID && cur.MaterialID == it.MaterialID {
			m.items[i] = it
			return nil
		}
	}
	m.items = append(m.items, it)
	return nil
}

func (m *memCompleted) Unmark(_ context.Context, projectID, materialID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.items {
		if cur.ProjectID == projectID && cur.MaterialID == materialID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type fixture struct {
	materials *memMaterials
	bookings  *memBookings
	completed *memCompleted
	tracker   *tracker.Tracker
	handler   *Handler
}

func newFixture() *fixture {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mats := &memMaterials{items: []materials.Material{
		{ID: "M1", Code: "SMA-STP10", Description: "Wechselrichter", Unit: "Stk", ItemsPerUnit: 1},
		{ID: "M2", Code: "SOL-6", Description: "Solarkabel", Unit: "m", ItemsPerUnit: 100},
	}}
	bks := &memBookings{materials: mats}
	done := &memCompleted{}
	tr := tracker.New(done, tracker.NewHub(), nil, log)

	h := NewHandler(log, mats, bks, projects.NewService(bks, mats, log), tr)
	return &fixture{materials: mats, bookings: bks, completed: done, tracker: tr, handler: h}
}
