package materials

import "testing"

func TestNormalize(t *testing.T) {
	m := Material{ID: "m1"}
	m.Normalize()
	if m.Unit != "Stk" {
		t.Errorf("expected default unit Stk, got %q", m.Unit)
	}
	if m.ItemsPerUnit != 1 {
		t.Errorf("expected default items per unit 1, got %d", m.ItemsPerUnit)
	}
	if m.Stock != 0 {
		t.Errorf("expected stock 0, got %d", m.Stock)
	}

	kept := Material{Unit: "m", ItemsPerUnit: 50}
	kept.Normalize()
	if kept.Unit != "m" || kept.ItemsPerUnit != 50 {
		t.Errorf("explicit values must be kept, got %+v", kept)
	}
}
