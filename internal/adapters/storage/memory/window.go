package memory

import "pet-guardianship/internal/domain/paging"

// slice aplica offset y límite de la ventana sobre filas ya ordenadas y filtradas.
func slice[T any](rows []T, w paging.Window) []T {
	if w.Offset < 0 || w.Offset >= len(rows) {
		return []T{}
	}
	rows = rows[w.Offset:]
	if n := w.Fetch(); len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
