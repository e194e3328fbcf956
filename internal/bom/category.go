package bom

type Category string

const (
	CategoryConfigured Category = "configured"
	CategoryManual     Category = "manual"
	CategoryAuto       Category = "auto"
)

// rank: чем больше, тем конкретнее источник. configured > manual > auto.
func (c Category) rank() int {
	switch c {
	case CategoryConfigured:
		return 2
	case CategoryManual:
		return 1
	}
	return 0
}

// lineCategory определяет категорию одной строки по флагам.
func lineCategory(isConfigured, isManual bool) Category {
	switch {
	case isConfigured:
		return CategoryConfigured
	case isManual:
		return CategoryManual
	}
	return CategoryAuto
}
