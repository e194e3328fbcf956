package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
	"github.com/Spok95/solar-bom/internal/projects"
)

// Ledger: выгрузка реестра и журнала в YAML для офлайн-расчёта.
//
//	materials:
//	  - id: M1
//	    code: SMA-STP10
//	    unit: Stk
//	bookings:
//	  - type: OUT
//	    project: P-1001
//	    items:
//	      - material: M1
//	        quantity: 10
//	        configured: true
//	completed:
//	  - project: P-1001
//	    material: M1
type Ledger struct {
	Materials []LedgerMaterial  `yaml:"materials"`
	Bookings  []LedgerBooking   `yaml:"bookings"`
	Completed []LedgerCompleted `yaml:"completed,omitempty"`
}

type LedgerMaterial struct {
	ID           string `yaml:"id"`
	Code         string `yaml:"code,omitempty"`
	Description  string `yaml:"description,omitempty"`
	Unit         string `yaml:"unit,omitempty"`
	ItemsPerUnit int    `yaml:"items_per_unit,omitempty"`
}

type LedgerBooking struct {
	ID        string       `yaml:"id,omitempty"`
	Type      string       `yaml:"type"`
	Project   string       `yaml:"project,omitempty"`
	CreatedAt time.Time    `yaml:"created_at,omitempty"`
	CreatedBy string       `yaml:"created_by,omitempty"`
	Items     []LedgerItem `yaml:"items"`
}

type LedgerItem struct {
	Material    string `yaml:"material"`
	Code        string `yaml:"code,omitempty"`
	Description string `yaml:"description,omitempty"`
	Unit        string `yaml:"unit,omitempty"`
	Quantity    int    `yaml:"quantity"`
	Configured  bool   `yaml:"configured,omitempty"`
	Manual      bool   `yaml:"manual,omitempty"`
}

type LedgerCompleted struct {
	Project   string    `yaml:"project"`
	Material  string    `yaml:"material"`
	CheckedBy string    `yaml:"checked_by,omitempty"`
	CheckedAt time.Time `yaml:"checked_at,omitempty"`
}

// LoadLedger читает и проверяет файл. Записи журнала проходят ту же валидацию, что и при проводке.
func LoadLedger(path string) (*Ledger, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var l Ledger
	if err := yaml.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("yaml ledger parsing error: %w", err)
	}

	for i, bk := range l.bookings() {
		if err := bk.Validate(); err != nil {
			return nil, fmt.Errorf("booking #%d: %w", i+1, err)
		}
	}
	return &l, nil
}

func (l *Ledger) Snapshot() *projects.Snapshot {
	ms := make([]materials.Material, 0, len(l.Materials))
	for _, m := range l.Materials {
		ms = append(ms, materials.Material{
			ID:           m.ID,
			Code:         m.Code,
			Description:  m.Description,
			Unit:         m.Unit,
			ItemsPerUnit: m.ItemsPerUnit,
		})
	}
	return &projects.Snapshot{Materials: ms, Bookings: l.bookings()}
}

func (l *Ledger) bookings() []bookings.Booking {
	out := make([]bookings.Booking, 0, len(l.Bookings))
	for i, b := range l.Bookings {
		id := b.ID
		if id == "" {
			id = fmt.Sprintf("ledger-%d", i+1)
		}
		items := make([]bookings.Item, 0, len(b.Items))
		for _, it := range b.Items {
			items = append(items, bookings.Item{
				MaterialID:   it.Material,
				Code:         it.Code,
				Description:  it.Description,
				Unit:         it.Unit,
				Quantity:     it.Quantity,
				IsConfigured: it.Configured,
				IsManual:     it.Manual,
			})
		}
		out = append(out, bookings.Booking{
			ID:        id,
			Type:      bookings.Type(b.Type),
			ProjectID: b.Project,
			CreatedAt: b.CreatedAt,
			CreatedBy: b.CreatedBy,
			Items:     items,
		})
	}
	return out
}

// completedList отдаёт отметки из файла через тот же интерфейс, что и репозиторий.
type completedList []completed.Item

func (l *Ledger) completed() completedList {
	out := make(completedList, 0, len(l.Completed))
	for _, c := range l.Completed {
		out = append(out, completed.Item{
			ProjectID:  c.Project,
			MaterialID: c.Material,
			CheckedBy:  c.CheckedBy,
			CheckedAt:  c.CheckedAt,
		})
	}
	return out
}

func (c completedList) ListByProject(_ context.Context, projectID string) ([]completed.Item, error) {
	out := []completed.Item{}
	for _, it := range c {
		if it.ProjectID == projectID {
			out = append(out, it)
		}
	}
	return out, nil
}
