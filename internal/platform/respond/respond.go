package respond

import (
	"encoding/json"
	"net/http"

	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/logger"
)

// JSON escribe v como JSON con el status indicado.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody es el cuerpo de toda respuesta de error.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Error traduce el kind de err a status HTTP y escribe {"error":{"kind","message"}}.
// Los 5xx se loguean con la causa completa; al cliente solo le llega el mensaje público.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := Status(kind)

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", map[string]any{
			"kind":  string(kind),
			"error": err.Error(),
		})
	}

	JSON(w, status, ErrorBody{Error: ErrorPayload{
		Kind:    kind,
		Message: apperr.Public(err),
	}})
}

func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
