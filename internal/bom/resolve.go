package bom

import "strings"

// ResolveField выбирает значение поля строки BOM: сначала денормализованное из
// записи журнала, затем из справочника материалов, иначе fallback.
// Пробельные строки считаются пустыми.
func ResolveField(lineValue, registryValue, fallback string) string {
	if v := strings.TrimSpace(lineValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(registryValue); v != "" {
		return v
	}
	return fallback
}
