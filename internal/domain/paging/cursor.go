package paging

import (
	"encoding/base64"
	"strconv"
	"strings"

	"pet-guardianship/internal/platform/apperr"
)

// Type tags de los cursores. Van dentro del payload; no son un secreto.
const (
	TagUser         = "User"
	TagPet          = "Pet"
	TagRegistration = "Registration"
)

// ErrInvalidCursor es un BadRequest: el token no decodifica a "tag:id".
var ErrInvalidCursor = apperr.BadRequest("invalid cursor")

// Encode arma el cursor opaco: base64("<tag>:<id>"). Determinístico y estable entre reinicios.
func Encode(id int64, tag string) string {
	return base64.StdEncoding.EncodeToString([]byte(tag + ":" + strconv.FormatInt(id, 10)))
}

// Decode devuelve el id del cursor sin validar el tag.
func Decode(cursor string) (int64, error) {
	_, id, err := Parse(cursor)
	return id, err
}

// Parse devuelve tag e id. El id debe ser un entero no negativo en decimal, sin signo.
func Parse(cursor string) (string, int64, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cursor))
	if err != nil {
		return "", 0, ErrInvalidCursor
	}
	payload := string(raw)

	i := strings.LastIndexByte(payload, ':')
	if i < 0 {
		return "", 0, ErrInvalidCursor
	}
	tag, digits := payload[:i], payload[i+1:]
	if digits == "" {
		return "", 0, ErrInvalidCursor
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", 0, ErrInvalidCursor
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", 0, ErrInvalidCursor
	}
	return tag, id, nil
}

// DecodeFor valida además que el cursor pertenezca a la lista que lo recibe.
func DecodeFor(cursor, wantTag string) (int64, error) {
	tag, id, err := Parse(cursor)
	if err != nil {
		return 0, err
	}
	if tag != wantTag {
		return 0, apperr.BadRequest("cursor does not belong to this list")
	}
	return id, nil
}
