package projects

import (
	"context"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/materials"
)

// Snapshot: журнал и реестр, загруженные целиком в память
// (выгрузка YAML для solarctl, тесты).
type Snapshot struct {
	Materials []materials.Material
	Bookings  []bookings.Booking
}

var (
	_ BookingSource  = (*Snapshot)(nil)
	_ MaterialSource = (*Snapshot)(nil)
)

func (s *Snapshot) ListByProject(_ context.Context, projectID string) ([]bookings.Booking, error) {
	out := make([]bookings.Booking, 0, len(s.Bookings))
	for _, b := range s.Bookings {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Snapshot) List(_ context.Context) ([]materials.Material, error) {
	return s.Materials, nil
}
