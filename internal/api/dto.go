package api

import (
	"time"

	"github.com/Spok95/solar-bom/internal/bom"
	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/completed"
	"github.com/Spok95/solar-bom/internal/domain/materials"
)

type materialDTO struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	Unit         string    `json:"unit"`
	ItemsPerUnit int       `json:"items_per_unit"`
	Stock        int       `json:"stock"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func toMaterialDTO(m materials.Material) materialDTO {
	return materialDTO{
		ID:           m.ID,
		Code:         m.Code,
		Description:  m.Description,
		Unit:         m.Unit,
		ItemsPerUnit: m.ItemsPerUnit,
		Stock:        m.Stock,
		CreatedAt:    m.CreatedAt,
	}
}

type bookingItemDTO struct {
	MaterialID   string `json:"material_id"`
	Code         string `json:"code,omitempty"`
	Description  string `json:"description,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Quantity     int    `json:"quantity"`
	IsConfigured bool   `json:"is_configured"`
	IsManual     bool   `json:"is_manual"`
}

type bookingDTO struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	ProjectID string           `json:"project_id"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `json:"created_by"`
	Note      string           `json:"note,omitempty"`
	Items     []bookingItemDTO `json:"items"`
}

func toBookingDTO(b bookings.Booking) bookingDTO {
	items := make([]bookingItemDTO, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, bookingItemDTO{
			MaterialID:   it.MaterialID,
			Code:         it.Code,
			Description:  it.Description,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			IsConfigured: it.IsConfigured,
			IsManual:     it.IsManual,
		})
	}
	return bookingDTO{
		ID:        b.ID,
		Type:      string(b.Type),
		ProjectID: b.ProjectID,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
		Note:      b.Note,
		Items:     items,
	}
}

type createBookingRequest struct {
	Type      string           `json:"type"`
	ProjectID string           `json:"project_id"`
	CreatedBy string           `json:"created_by"`
	Note      string           `json:"note"`
	Items     []bookingItemDTO `json:"items"`
}

func (r createBookingRequest) booking() bookings.Booking {
	items := make([]bookings.Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, bookings.Item{
			MaterialID:   it.MaterialID,
			Code:         it.Code,
			Description:  it.Description,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
			IsConfigured: it.IsConfigured,
			IsManual:     it.IsManual,
		})
	}
	return bookings.Booking{
		Type:      bookings.Type(r.Type),
		ProjectID: r.ProjectID,
		CreatedBy: r.CreatedBy,
		Note:      r.Note,
		Items:     items,
	}
}

type bomRowDTO struct {
	MaterialID   string `json:"material_id"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	Unit         string `json:"unit"`
	ItemsPerUnit int    `json:"items_per_unit"`
	Quantity     int    `json:"quantity"`
	Category     string `json:"category"`
	Completed    bool   `json:"completed"`
}

type bomResponse struct {
	ProjectID  string      `json:"project_id"`
	Configured []bomRowDTO `json:"configured"`
	Auto       []bomRowDTO `json:"auto"`
	Manual     []bomRowDTO `json:"manual"`
	Completed  []string    `json:"completed"`
}

func toBOMRows(rows []bom.AggregatedMaterial, done map[string]bool) []bomRowDTO {
	out := make([]bomRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, bomRowDTO{
			MaterialID:   r.MaterialID,
			Code:         r.Code,
			Description:  r.Description,
			Unit:         r.Unit,
			ItemsPerUnit: r.ItemsPerUnit,
			Quantity:     r.Quantity,
			Category:     string(r.Category),
			Completed:    done[r.MaterialID],
		})
	}
	return out
}

type completedDTO struct {
	MaterialID string    `json:"material_id"`
	CheckedBy  string    `json:"checked_by"`
	CheckedAt  time.Time `json:"checked_at"`
}

func toCompletedDTOs(items []completed.Item) []completedDTO {
	out := make([]completedDTO, 0, len(items))
	for _, it := range items {
		out = append(out, completedDTO{
			MaterialID: it.MaterialID,
			CheckedBy:  it.CheckedBy,
			CheckedAt:  it.CheckedAt,
		})
	}
	return out
}

type toggleRequest struct {
	UserID    string `json:"user_id"`
	Completed bool   `json:"completed"`
}
