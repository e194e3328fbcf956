package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/solar-bom/internal/domain/bookings"
)

const sampleLedger = `
materials:
  - id: M1
    code: SMA-STP10
    description: Wechselrichter
  - id: M2
    code: SOL-6
    description: Solarkabel
    unit: m
    items_per_unit: 100
bookings:
  - type: OUT
    project: P1
    items:
      - material: M1
        quantity: 10
        configured: true
  - type: OUT
    project: P1
    items:
      - material: M1
        quantity: 3
      - material: M2
        quantity: 40
        manual: true
  - type: IN
    project: P1
    items:
      - material: M1
        quantity: 2
  - type: IN
    items:
      - material: M2
        quantity: 500
completed:
  - project: P1
    material: M2
    checked_by: "tg:7"
`

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLoadLedger(t *testing.T) {
	l, err := LoadLedger(writeLedger(t, sampleLedger))
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	snap := l.Snapshot()
	if len(snap.Materials) != 2 || len(snap.Bookings) != 4 {
		t.Fatalf("unexpected snapshot sizes: %d materials, %d bookings", len(snap.Materials), len(snap.Bookings))
	}
	first := snap.Bookings[0]
	if first.ID != "ledger-1" || first.Type != bookings.TypeOut || !first.Items[0].IsConfigured {
		t.Errorf("unexpected first booking %+v", first)
	}
	if snap.Bookings[3].ProjectID != "" {
		t.Errorf("warehouse receipt must have no project")
	}
}

func TestLoadLedgerRejectsInvalidBooking(t *testing.T) {
	_, err := LoadLedger(writeLedger(t, `
bookings:
  - type: OUT
    project: P1
    items:
      - material: M1
        quantity: 0
`))
	if !errors.Is(err, bookings.ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking, got %v", err)
	}
}

func TestLoadLedgerBadYAML(t *testing.T) {
	if _, err := LoadLedger(writeLedger(t, "materials: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBOMCommand(t *testing.T) {
	out, err := run(t, "bom", "--project", "P1", "--ledger", writeLedger(t, sampleLedger), "--no-color")
	if err != nil {
		t.Fatalf("bom: %v\n%s", err, out)
	}

	wantInOrder := []string{
		"Project P1",
		"Configured (1)",
		"[ ]     11 Stk  SMA-STP10",
		"Manual (1)",
		"[x]     40 m    SOL-6",
	}
	pos := 0
	for _, want := range wantInOrder {
		i := strings.Index(out[pos:], want)
		if i < 0 {
			t.Fatalf("missing %q after offset %d in:\n%s", want, pos, out)
		}
		pos += i + len(want)
	}
	if strings.Contains(out, "Auto (") {
		t.Errorf("empty auto group must not be printed:\n%s", out)
	}
}

func TestBOMCommandUnknownProject(t *testing.T) {
	out, err := run(t, "bom", "-p", "NOPE", "-l", writeLedger(t, sampleLedger))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no materials booked") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBOMCommandRequiresProject(t *testing.T) {
	if _, err := run(t, "bom", "--ledger", writeLedger(t, sampleLedger)); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestExportCommand(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "p1.xlsx")
	out, err := run(t, "export", "--project", "P1", "--out", dst, "--ledger", writeLedger(t, sampleLedger))
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "wrote 2 rows") {
		t.Errorf("unexpected output %q", out)
	}

	f, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("BOM")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %v", rows)
	}
	if rows[1][0] != "configured" || rows[1][5] != "11" {
		t.Errorf("unexpected configured row %v", rows[1])
	}
	if rows[2][0] != "manual" || rows[2][6] != "x" {
		t.Errorf("unexpected manual row %v", rows[2])
	}
}
