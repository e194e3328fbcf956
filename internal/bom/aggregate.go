// Package bom сводит журнал движений проекта в спецификацию материалов.
package bom

import (
	"strings"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/materials"
)

type AggregatedMaterial struct {
	MaterialID   string
	Code         string
	Description  string
	Unit         string
	ItemsPerUnit int
	// Quantity = Σ OUT − Σ IN по проекту. Отрицательное значение не исправляется:
	// это признак перевозврата или кривых данных.
	Quantity int
	Category Category
}

type acc struct {
	row     AggregatedMaterial
	hasLine bool // категория выставлена хотя бы одной OUT-строкой
}

// Aggregate сворачивает записи журнала проекта projectID в одну строку на материал.
// allBookings: весь журнал, фильтрация по проекту делается здесь.
// Порядок строк совпадает с порядком первого появления материала во входных данных.
func Aggregate(projectID string, allBookings []bookings.Booking, allMaterials []materials.Material) []AggregatedMaterial {
	if projectID == "" {
		return []AggregatedMaterial{}
	}

	registry := make(map[string]materials.Material, len(allMaterials))
	for _, m := range allMaterials {
		registry[m.ID] = m
	}

	byID := make(map[string]*acc)
	var order []string

	for _, b := range allBookings {
		if b.ProjectID != projectID {
			continue
		}
		for _, it := range b.Items {
			a, ok := byID[it.MaterialID]
			if !ok {
				a = &acc{row: AggregatedMaterial{MaterialID: it.MaterialID, Category: CategoryAuto}}
				byID[it.MaterialID] = a
				order = append(order, it.MaterialID)
			}

			switch b.Type {
			case bookings.TypeOut:
				a.row.Quantity += it.Quantity
				c := lineCategory(it.IsConfigured, it.IsManual)
				if !a.hasLine || c.rank() > a.row.Category.rank() {
					a.row.Category = c
					a.hasLine = true
				}
			case bookings.TypeIn:
				a.row.Quantity -= it.Quantity
			}

			// первое непустое денормализованное значение выигрывает
			a.row.Code = firstNonBlank(a.row.Code, it.Code)
			a.row.Description = firstNonBlank(a.row.Description, it.Description)
			a.row.Unit = firstNonBlank(a.row.Unit, it.Unit)
		}
	}

	out := make([]AggregatedMaterial, 0, len(order))
	for _, id := range order {
		a := byID[id]
		if a.row.Quantity == 0 {
			continue
		}
		reg, known := registry[id]

		row := a.row
		row.Code = ResolveField(row.Code, reg.Code, "")
		row.Description = ResolveField(row.Description, reg.Description, "")
		row.Unit = ResolveField(row.Unit, reg.Unit, materials.DefaultUnit)
		row.ItemsPerUnit = materials.DefaultItemsPerUnit
		if known && reg.ItemsPerUnit > 0 {
			row.ItemsPerUnit = reg.ItemsPerUnit
		}
		out = append(out, row)
	}
	return out
}

func firstNonBlank(cur, next string) string {
	if strings.TrimSpace(cur) != "" {
		return cur
	}
	return next
}

// Negative возвращает строки с отрицательным количеством.
func Negative(rows []AggregatedMaterial) []AggregatedMaterial {
	var out []AggregatedMaterial
	for _, r := range rows {
		if r.Quantity < 0 {
			out = append(out, r)
		}
	}
	return out
}
