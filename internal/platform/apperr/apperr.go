package apperr

import (
	"errors"
	"fmt"
)

// Kind clasifica un error del motor de registro. Los handlers lo traducen a status HTTP.
type Kind string

const (
	KindBadRequest            Kind = "bad_request"
	KindNotFound              Kind = "not_found"
	KindConflict              Kind = "conflict"
	KindInternalInconsistency Kind = "internal_inconsistency"
	KindStoreUnavailable      Kind = "store_unavailable"
)

// Sentinels por kind: errors.Is(err, apperr.ErrNotFound) matchea cualquier *Error con ese Kind.
var (
	ErrBadRequest            = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict              = &Error{Kind: KindConflict, Message: "conflict"}
	ErrInternalInconsistency = &Error{Kind: KindInternalInconsistency, Message: "internal inconsistency"}
	ErrStoreUnavailable      = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
)

// Error es el error estructurado que ve el caller: kind + mensaje legible.
// Err guarda la causa (driver, red, etc.) solo para logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara solo por Kind, para que los sentinels funcionen con errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Inconsistency indica que se observó un conteo de filas que viola un invariante. Siempre es un bug.
func Inconsistency(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInternalInconsistency, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Unavailable envuelve una falla del store (timeout, conexión, error inesperado del driver).
func Unavailable(cause error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "store unavailable", Err: cause}
}

// KindOf devuelve el kind de err. Errores sin clasificar cuentan como StoreUnavailable:
// lo único que llega sin envolver desde abajo son fallas de infraestructura.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreUnavailable
}

// Public devuelve el mensaje apto para el caller. Nunca expone detalle del store.
func Public(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "store unavailable"
	}
	switch e.Kind {
	case KindInternalInconsistency:
		return "internal error"
	case KindStoreUnavailable:
		return "store unavailable"
	default:
		return e.Message
	}
}
