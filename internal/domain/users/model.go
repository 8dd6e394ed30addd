package users

import (
	"strings"
	"time"

	"pet-guardianship/internal/platform/apperr"
)

const MaxNicknameLen = 50

// User es un guardián posible. Nunca se borra físicamente: Deleted=true es baja lógica.
type User struct {
	ID       int64
	Nickname string
	Deleted  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field es un campo proyectable en las respuestas (?fields=id,nickname).
type Field string

const (
	FieldID       Field = "id"
	FieldNickname Field = "nickname"
	FieldDeleted  Field = "deleted"
)

var allowedFields = map[Field]struct{}{
	FieldID:       {},
	FieldNickname: {},
	FieldDeleted:  {},
}

// ParseFields valida la lista CSV contra el set permitido. Vacío = todos los campos.
func ParseFields(raw string) ([]Field, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	seen := map[Field]struct{}{}
	out := make([]Field, 0)
	for _, part := range strings.Split(raw, ",") {
		f := Field(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if _, ok := allowedFields[f]; !ok {
			return nil, apperr.BadRequest("unknown user field %q", string(f))
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func normalizeNickname(s string) (string, error) {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	if n == 0 || n > MaxNicknameLen {
		return "", apperr.BadRequest("nickname must be between 1 and %d characters", MaxNicknameLen)
	}
	return s, nil
}
