package paging

import (
	"math"

	"pet-guardianship/internal/platform/apperr"
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// Request son los parámetros de paginado tal como llegan del transporte.
// Modo cursor: First + After. Modo offset: Page + PageSize. No se mezclan.
type Request struct {
	First    int
	After    string
	Page     *int
	PageSize int
}

// Window es el request ya normalizado, listo para el store.
type Window struct {
	Limit  int
	Offset int

	// After es el id decodificado del cursor; HasAfter indica si vino cursor.
	After    int64
	HasAfter bool

	// Lookahead: el store debe traer Limit+1 filas para que hasNextPage sea exacto.
	Lookahead bool
}

// Fetch es cuántas filas pedirle al store.
func (w Window) Fetch() int {
	if w.Lookahead {
		return w.Limit + 1
	}
	return w.Limit
}

// Options controla la normalización.
type Options struct {
	DefaultSize int
	Lookahead   bool
}

// ClampPageSize aplica default y límites [1, 100].
func ClampPageSize(value, def int) int {
	size := value
	if size <= 0 {
		size = def
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if size < MinPageSize {
		size = MinPageSize
	}
	return size
}

// Normalize valida el request contra el tag de la lista y devuelve la ventana.
func Normalize(req Request, tag string, opts Options) (Window, error) {
	w := Window{Lookahead: opts.Lookahead}

	if req.Page != nil {
		if req.After != "" {
			return Window{}, apperr.BadRequest("after and page cannot be combined")
		}
		if *req.Page < 1 {
			return Window{}, apperr.BadRequest("page must be >= 1")
		}
		w.Limit = ClampPageSize(req.PageSize, opts.DefaultSize)
		// (page-1)*limit tiene que entrar en un int.
		if *req.Page-1 > math.MaxInt/w.Limit {
			return Window{}, apperr.BadRequest("page out of range")
		}
		w.Offset = (*req.Page - 1) * w.Limit
		return w, nil
	}

	size := req.First
	if size <= 0 {
		size = req.PageSize
	}
	w.Limit = ClampPageSize(size, opts.DefaultSize)

	if req.After != "" {
		id, err := DecodeFor(req.After, tag)
		if err != nil {
			return Window{}, err
		}
		w.After = id
		w.HasAfter = true
	}
	return w, nil
}
