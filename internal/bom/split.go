package bom

type Split struct {
	Configured []AggregatedMaterial
	Auto       []AggregatedMaterial
	Manual     []AggregatedMaterial
}

// SplitByCategory раскладывает строки по трём категориям с сохранением порядка.
// Каждая строка попадает ровно в один список.
func SplitByCategory(rows []AggregatedMaterial) Split {
	s := Split{
		Configured: []AggregatedMaterial{},
		Auto:       []AggregatedMaterial{},
		Manual:     []AggregatedMaterial{},
	}
	for _, r := range rows {
		switch r.Category {
		case CategoryConfigured:
			s.Configured = append(s.Configured, r)
		case CategoryManual:
			s.Manual = append(s.Manual, r)
		default:
			s.Auto = append(s.Auto, r)
		}
	}
	return s
}

func (s Split) Len() int { return len(s.Configured) + len(s.Auto) + len(s.Manual) }

// Groups отдаёт группы в порядке вывода: configured, auto, manual.
func (s Split) Groups() []Group {
	return []Group{
		{Category: CategoryConfigured, Rows: s.Configured},
		{Category: CategoryAuto, Rows: s.Auto},
		{Category: CategoryManual, Rows: s.Manual},
	}
}

type Group struct {
	Category Category
	Rows     []AggregatedMaterial
}
