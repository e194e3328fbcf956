package completed

import "time"

// Item: отметка «позиция собрана» для материала в проекте.
type Item struct {
	ProjectID  string
	MaterialID string
	CheckedBy  string
	CheckedAt  time.Time
}

// Set переводит список отметок в множество id материалов.
func Set(items []Item) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it.MaterialID] = true
	}
	return out
}
