package pets

import (
	"net/url"
	"strings"
	"time"

	"pet-guardianship/internal/platform/apperr"
)

const (
	MaxSpeciesLen  = 30
	MaxNicknameLen = 50
	MaxImageURLLen = 2048
)

// Pet representa una mascota que puede tener (a lo sumo) un guardián activo.
type Pet struct {
	ID       int64
	Species  string
	Nickname string
	ImageURL string
	Deleted  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field es un campo proyectable en las respuestas (?fields=id,nickname).
type Field string

const (
	FieldID       Field = "id"
	FieldSpecies  Field = "species"
	FieldNickname Field = "nickname"
	FieldImageURL Field = "image_url"
	FieldDeleted  Field = "deleted"
)

var allowedFields = map[Field]struct{}{
	FieldID:       {},
	FieldSpecies:  {},
	FieldNickname: {},
	FieldImageURL: {},
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
			return nil, apperr.BadRequest("unknown pet field %q", string(f))
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func normalizeBounded(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	if n == 0 || n > max {
		return "", apperr.BadRequest("%s must be between 1 and %d characters", field, max)
	}
	return s, nil
}

// normalizeImageURL acepta vacío o una URL http(s) absoluta.
func normalizeImageURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if len(s) > MaxImageURLLen {
		return "", apperr.BadRequest("image_url must be at most %d characters", MaxImageURLLen)
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperr.BadRequest("image_url must be an absolute http(s) URL")
	}
	return s, nil
}
