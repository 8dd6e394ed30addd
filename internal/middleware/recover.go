package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/logger"
	"pet-guardianship/internal/platform/respond"
)

// Recover convierte un panic en 500 con el cuerpo de error estándar y lo loguea con stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic recovered", map[string]any{
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			})
			respond.Error(w, r, apperr.Inconsistency(fmt.Errorf("panic: %v", rec), "panic"))
		}()
		next.ServeHTTP(w, r)
	})
}
