package bot

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/Spok95/solar-bom/internal/bom"
)

const (
	// строк спецификации на одну страницу сообщения
	pageSize = 25
	// лимит описания в строке списка, в рунах
	maxDescription = 48
)

var groupTitles = map[bom.Category]string{
	bom.CategoryConfigured: "Konfiguriert",
	bom.CategoryAuto:       "Automatisch",
	bom.CategoryManual:     "Manuell",
}

func checkbox(done bool) string {
	if done {
		return "✅"
	}
	return "⬜"
}

// line: строка спецификации со сквозным номером в порядке вывода.
type line struct {
	idx      int
	category bom.Category
	row      bom.AggregatedMaterial
}

// flatten раскладывает группы configured, auto, manual в один нумерованный список.
func flatten(s bom.Split) []line {
	out := make([]line, 0, s.Len())
	for _, g := range s.Groups() {
		for _, m := range g.Rows {
			out = append(out, line{idx: len(out), category: g.Category, row: m})
		}
	}
	return out
}

func pageCount(n int) int {
	if n == 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

func clampPage(page, n int) int {
	if page < 0 {
		return 0
	}
	if last := pageCount(n) - 1; page > last {
		return last
	}
	return page
}

func pageOf(idx int) int { return idx / pageSize }

func pageLines(lines []line, page int) []line {
	page = clampPage(page, len(lines))
	from := page * pageSize
	to := min(from+pageSize, len(lines))
	return lines[from:to]
}

// materialHash: короткий отпечаток id материала для callback data.
func materialHash(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32()
}

// resolveLine находит строку по номеру из кнопки и сверяет отпечаток материала:
// если список с тех пор изменился, строка не найдётся.
func resolveLine(s bom.Split, idx int, hash uint32) (bom.AggregatedMaterial, bool) {
	lines := flatten(s)
	if idx < 0 || idx >= len(lines) {
		return bom.AggregatedMaterial{}, false
	}
	m := lines[idx].row
	if materialHash(m.MaterialID) != hash {
		return bom.AggregatedMaterial{}, false
	}
	return m, true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// renderBOM: текст одной страницы списка материалов проекта.
// Пустые группы не выводятся, счётчик «Erledigt» считается по всему проекту.
func renderBOM(projectID string, s bom.Split, done map[string]bool, page int) string {
	if s.Len() == 0 {
		return fmt.Sprintf("Keine Materialien für Projekt %s.", projectID)
	}

	lines := flatten(s)
	page = clampPage(page, len(lines))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stückliste Projekt %s\n", truncate(projectID, 64))

	var current bom.Category
	for _, l := range pageLines(lines, page) {
		if l.category != current {
			current = l.category
			fmt.Fprintf(&sb, "\n%s\n", groupTitles[l.category])
		}
		m := l.row
		fmt.Fprintf(&sb, "%s %s", checkbox(done[m.MaterialID]), truncate(buttonLabel(m), maxButtonLabel))
		if m.Description != "" {
			fmt.Fprintf(&sb, " %s", truncate(m.Description, maxDescription))
		}
		fmt.Fprintf(&sb, ": %d %s", m.Quantity, truncate(m.Unit, 8))
		if m.Quantity < 0 {
			sb.WriteString(" ⚠️")
		}
		sb.WriteString("\n")
	}

	checked := 0
	for _, l := range lines {
		if done[l.row.MaterialID] {
			checked++
		}
	}
	fmt.Fprintf(&sb, "\nErledigt: %d/%d", checked, len(lines))
	if pages := pageCount(len(lines)); pages > 1 {
		fmt.Fprintf(&sb, " · Seite %d/%d", page+1, pages)
	}
	return sb.String()
}
