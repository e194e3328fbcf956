package materials

import "time"

const (
	DefaultUnit         = "Stk"
	DefaultItemsPerUnit = 1
)

type Material struct {
	ID           string
	Code         string // артикул, "materialID" в старых выгрузках
	Description  string
	Unit         string
	ItemsPerUnit int
	Stock        int // может уходить в минус
	CreatedAt    time.Time
}

// Normalize подставляет значения по умолчанию для пустых полей.
func (m *Material) Normalize() {
	if m.Unit == "" {
		m.Unit = DefaultUnit
	}
	if m.ItemsPerUnit <= 0 {
		m.ItemsPerUnit = DefaultItemsPerUnit
	}
}
