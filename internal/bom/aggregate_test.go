package bom

import (
	"reflect"
	"testing"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
	"github.com/Spok95/solar-bom/internal/domain/materials"
)

func out(project string, items ...bookings.Item) bookings.Booking {
	return bookings.Booking{Type: bookings.TypeOut, ProjectID: project, Items: items}
}

func in(project string, items ...bookings.Item) bookings.Booking {
	return bookings.Booking{Type: bookings.TypeIn, ProjectID: project, Items: items}
}

func line(materialID string, qty int) bookings.Item {
	return bookings.Item{MaterialID: materialID, Code: "C-" + materialID, Description: "desc " + materialID, Quantity: qty}
}

func configured(it bookings.Item) bookings.Item { it.IsConfigured = true; return it }
func manual(it bookings.Item) bookings.Item     { it.IsManual = true; return it }

func findRow(rows []AggregatedMaterial, id string) (AggregatedMaterial, bool) {
	for _, r := range rows {
		if r.MaterialID == id {
			return r, true
		}
	}
	return AggregatedMaterial{}, false
}

func TestAggregate_ExampleScenario(t *testing.T) {
	ledger := []bookings.Booking{
		out("P1", configured(line("M1", 10))),
		out("P1", manual(line("M1", 3))),
		in("P1", line("M1", 2)),
		out("P2", line("M2", 5)),
		in("P2", line("M2", 5)),
	}

	rows := Aggregate("P1", ledger, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for P1, got %d: %+v", len(rows), rows)
	}
	if rows[0].MaterialID != "M1" || rows[0].Quantity != 11 {
		t.Errorf("expected M1 qty 11, got %s qty %d", rows[0].MaterialID, rows[0].Quantity)
	}
	if rows[0].Category != CategoryConfigured {
		t.Errorf("expected category configured, got %s", rows[0].Category)
	}

	if rows := Aggregate("P2", ledger, nil); len(rows) != 0 {
		t.Errorf("fully reconciled project must yield no rows, got %+v", rows)
	}
}

func TestAggregate_NetQuantityConservation(t *testing.T) {
	ledger := []bookings.Booking{
		out("P1", line("A", 4), line("B", 7)),
		out("P2", line("A", 100)),
		in("P1", line("B", 2)),
		out("P1", line("A", 1), line("C", 3)),
		in("", line("A", 50)), // складской приход, к проекту не относится
		in("P1", line("C", 5)),
		out("P1", line("B", 1)),
	}

	// независимый подсчёт
	want := map[string]int{}
	for _, b := range ledger {
		if b.ProjectID != "P1" {
			continue
		}
		for _, it := range b.Items {
			if b.Type == bookings.TypeOut {
				want[it.MaterialID] += it.Quantity
			} else {
				want[it.MaterialID] -= it.Quantity
			}
		}
	}

	rows := Aggregate("P1", ledger, nil)
	for id, qty := range want {
		r, ok := findRow(rows, id)
		if qty == 0 {
			if ok {
				t.Errorf("material %s nets to zero and must be omitted", id)
			}
			continue
		}
		if !ok {
			t.Errorf("missing row for %s", id)
			continue
		}
		if r.Quantity != qty {
			t.Errorf("material %s: expected %d, got %d", id, qty, r.Quantity)
		}
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows, got %d", len(rows))
	}
}

func TestAggregate_NegativeSurfaced(t *testing.T) {
	ledger := []bookings.Booking{
		out("P1", line("M1", 2)),
		in("P1", line("M1", 5)),
	}
	rows := Aggregate("P1", ledger, nil)
	if len(rows) != 1 || rows[0].Quantity != -3 {
		t.Fatalf("expected one row with -3, got %+v", rows)
	}
	if rows[0].Category != CategoryAuto {
		t.Errorf("expected auto category, got %s", rows[0].Category)
	}
	if neg := Negative(rows); len(neg) != 1 || neg[0].MaterialID != "M1" {
		t.Errorf("Negative() = %+v", neg)
	}
}

func TestAggregate_CategoryPriority(t *testing.T) {
	tests := []struct {
		name  string
		lines []bookings.Item
		want  Category
	}{
		{"plain only", []bookings.Item{line("M", 1), line("M", 2)}, CategoryAuto},
		{"manual wins over auto", []bookings.Item{line("M", 1), manual(line("M", 1))}, CategoryManual},
		{"configured wins over manual", []bookings.Item{manual(line("M", 1)), configured(line("M", 1))}, CategoryConfigured},
		{"configured first stays", []bookings.Item{configured(line("M", 1)), manual(line("M", 1)), line("M", 1)}, CategoryConfigured},
		{"both flags count as configured", []bookings.Item{manual(configured(line("M", 1)))}, CategoryConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ledger []bookings.Booking
			for _, l := range tt.lines {
				ledger = append(ledger, out("P1", l))
			}
			rows := Aggregate("P1", ledger, nil)
			if len(rows) != 1 {
				t.Fatalf("material must never be split across rows, got %d", len(rows))
			}
			if rows[0].Category != tt.want {
				t.Errorf("expected %s, got %s", tt.want, rows[0].Category)
			}
		})
	}
}

func TestAggregate_InLinesDoNotSetCategory(t *testing.T) {
	ledger := []bookings.Booking{
		in("P1", configured(line("M1", 1))),
		out("P1", line("M1", 4)),
	}
	rows := Aggregate("P1", ledger, nil)
	if len(rows) != 1 || rows[0].Category != CategoryAuto {
		t.Fatalf("expected auto from OUT line only, got %+v", rows)
	}
}

func TestAggregate_EmptyAndUnknownProject(t *testing.T) {
	ledger := []bookings.Booking{out("P1", line("M1", 1))}

	if rows := Aggregate("nonexistent-id", ledger, nil); rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", rows)
	}
	if rows := Aggregate("", ledger, nil); rows == nil || len(rows) != 0 {
		t.Errorf("empty project id must yield empty slice, got %#v", rows)
	}
	// складские приходы с пустым project id не должны попадать по пустому id
	warehouse := []bookings.Booking{in("", line("M1", 3))}
	if rows := Aggregate("", warehouse, nil); len(rows) != 0 {
		t.Errorf("warehouse bookings must not form a BOM, got %+v", rows)
	}
}

func TestAggregate_OrderOfFirstAppearance(t *testing.T) {
	ledger := []bookings.Booking{
		out("P1", line("Z", 1), line("A", 1)),
		out("P1", line("M", 1), line("Z", 1)),
		out("P1", line("B", 1)),
	}
	rows := Aggregate("P1", ledger, nil)

	var got []string
	for _, r := range rows {
		got = append(got, r.MaterialID)
	}
	want := []string{"Z", "A", "M", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestAggregate_RegistryFallback(t *testing.T) {
	registry := []materials.Material{
		{ID: "M1", Code: "PV-MOD-420", Description: "Modul 420 Wp", Unit: "Stk", ItemsPerUnit: 1},
		{ID: "M2", Code: "KAB-6", Description: "Solarkabel 6mm²", Unit: "m", ItemsPerUnit: 100},
	}
	ledger := []bookings.Booking{
		out("P1",
			bookings.Item{MaterialID: "M1", Quantity: 20},
			bookings.Item{MaterialID: "M2", Code: "KAB-6-ALT", Description: "  ", Quantity: 2},
			bookings.Item{MaterialID: "GONE", Code: "OLD-1", Description: "Altbestand", Quantity: 1},
		),
	}

	rows := Aggregate("P1", ledger, registry)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	m1, _ := findRow(rows, "M1")
	if m1.Code != "PV-MOD-420" || m1.Description != "Modul 420 Wp" || m1.Unit != "Stk" {
		t.Errorf("M1 must be filled from registry, got %+v", m1)
	}

	m2, _ := findRow(rows, "M2")
	if m2.Code != "KAB-6-ALT" {
		t.Errorf("booking line code must win, got %q", m2.Code)
	}
	if m2.Description != "Solarkabel 6mm²" {
		t.Errorf("blank line description must fall back to registry, got %q", m2.Description)
	}
	if m2.Unit != "m" || m2.ItemsPerUnit != 100 {
		t.Errorf("unit data must come from registry, got %+v", m2)
	}

	gone, ok := findRow(rows, "GONE")
	if !ok {
		t.Fatal("material missing from registry must still produce a row")
	}
	if gone.Unit != "Stk" || gone.ItemsPerUnit != 1 || gone.Code != "OLD-1" || gone.Description != "Altbestand" {
		t.Errorf("degraded row must use line fields and defaults, got %+v", gone)
	}
}

func TestAggregate_LaterLineFillsBlankFields(t *testing.T) {
	ledger := []bookings.Booking{
		out("P1", bookings.Item{MaterialID: "M1", Quantity: 1}),
		out("P1", bookings.Item{MaterialID: "M1", Code: "WR-10", Description: "Wechselrichter 10 kW", Unit: "Stk", Quantity: 1}),
	}
	rows := Aggregate("P1", ledger, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Code != "WR-10" || rows[0].Description != "Wechselrichter 10 kW" {
		t.Errorf("expected fields from the later line, got %+v", rows[0])
	}
	if rows[0].Quantity != 2 {
		t.Errorf("expected qty 2, got %d", rows[0].Quantity)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	registry := []materials.Material{{ID: "B", Code: "B-1", Unit: "Pack", ItemsPerUnit: 10}}
	ledger := []bookings.Booking{
		out("P1", configured(line("A", 3)), line("B", 2), manual(line("C", 1))),
		in("P1", line("A", 1)),
		out("P1", line("D", 9), manual(line("B", 1))),
	}

	first := Aggregate("P1", ledger, registry)
	second := Aggregate("P1", ledger, registry)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation must be deterministic:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(SplitByCategory(first), SplitByCategory(second)) {
		t.Error("split must be deterministic")
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	ledger := []bookings.Booking{out("P1", bookings.Item{MaterialID: "M1", Quantity: 2})}
	registry := []materials.Material{{ID: "M1", Code: "X"}}

	_ = Aggregate("P1", ledger, registry)

	if ledger[0].Items[0].Code != "" {
		t.Error("booking lines must not be modified")
	}
	if registry[0].Unit != "" {
		t.Error("registry entries must not be modified")
	}
}
