package users

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/", createUserHandler(svc))
		ur.Get("/", listUsersHandler(svc))

		ur.Get("/{userID}", getUserHandler(svc))
		ur.Patch("/{userID}", updateUserHandler(svc))
		ur.Delete("/{userID}", deleteUserHandler(svc))
	})
}

type createUserRequest struct {
	Nickname string `json:"nickname"`
}

type updateUserRequest struct {
	Nickname string `json:"nickname"`
}

// userResponse es la representación pública de un usuario.
type userResponse struct {
	ID        int64     `json:"id"`
	Nickname  string    `json:"nickname"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createUserHandler godoc
// @Summary Crear usuario
// @Description Crea un usuario (posible guardián). El nickname se recorta y debe tener entre 1 y 50 caracteres.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body createUserRequest true "Datos del usuario"
// @Success 201 {object} userResponse
// @Failure 400 {object} respond.ErrorBody "json inválido / nickname inválido"
// @Router /users [post]
func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, apperr.BadRequest("invalid json"))
			return
		}

		u, err := svc.Create(r.Context(), req.Nickname)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Description Lista usuarios no dados de baja por id ascendente. Paginado por cursor (first/after) u offset (page/pageSize).
// @Tags users
// @Produce json
// @Param first query int false "Tamaño de página en modo cursor (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1) en modo offset"
// @Param pageSize query int false "Tamaño de página en modo offset (1-100)"
// @Param fields query string false "Campos a devolver (CSV de id,nickname,deleted)"
// @Success 200 {object} paging.Connection[userResponse]
// @Failure 400 {object} respond.ErrorBody "cursor o página inválidos / campo desconocido"
// @Router /users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := ParseFields(r.URL.Query().Get("fields"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		req, err := paging.FromQuery(r.URL.Query())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		conn, err := svc.List(r.Context(), req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, paging.Map(conn, func(u User) any { return project(u, fields) }))
	}
}

// getUserHandler godoc
// @Summary Obtener usuario
// @Tags users
// @Produce json
// @Param userID path int true "ID del usuario"
// @Param fields query string false "Campos a devolver (CSV de id,nickname,deleted)"
// @Success 200 {object} userResponse
// @Failure 400 {object} respond.ErrorBody "id inválido / campo desconocido"
// @Failure 404 {object} respond.ErrorBody "user not found"
// @Router /users/{userID} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "userID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		fields, err := ParseFields(r.URL.Query().Get("fields"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		u, err := svc.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, project(u, fields))
	}
}

// updateUserHandler godoc
// @Summary Cambiar nickname
// @Tags users
// @Accept json
// @Produce json
// @Param userID path int true "ID del usuario"
// @Param payload body updateUserRequest true "Nuevo nickname"
// @Success 200 {object} userResponse
// @Failure 400 {object} respond.ErrorBody "json inválido / nickname inválido"
// @Failure 404 {object} respond.ErrorBody "user not found"
// @Router /users/{userID} [patch]
func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "userID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updateUserRequest
		if err := dec.Decode(&req); err != nil {
			respond.Error(w, r, apperr.BadRequest("invalid json"))
			return
		}

		u, err := svc.UpdateNickname(r.Context(), id, req.Nickname)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toUserResponse(u))
	}
}

// deleteUserHandler godoc
// @Summary Dar de baja usuario
// @Description Baja lógica. Las registraciones activas del usuario siguen activas.
// @Tags users
// @Param userID path int true "ID del usuario"
// @Success 204
// @Failure 404 {object} respond.ErrorBody "user not found"
// @Router /users/{userID} [delete]
func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "userID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			respond.Error(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Deleted:   u.Deleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToResponse expone la forma pública para otros módulos (p.ej. el guardián actual de una mascota).
func ToResponse(u User) any { return toUserResponse(u) }

func project(u User, fields []Field) any {
	if len(fields) == 0 {
		return toUserResponse(u)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case FieldID:
			out[string(f)] = u.ID
		case FieldNickname:
			out[string(f)] = u.Nickname
		case FieldDeleted:
			out[string(f)] = u.Deleted
		}
	}
	return out
}

// ParseID valida el {userID} de la ruta.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("user id must be a positive integer")
	}
	return id, nil
}
