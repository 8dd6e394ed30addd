package registrations

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets/{petID}/registration", func(rr chi.Router) {
		rr.Post("/", registerHandler(svc))
		rr.Post("/release", releaseHandler(svc))
	})

	r.Get("/pets/{petID}/guardian", currentGuardianHandler(svc))
	r.Get("/pets/{petID}/guardians", guardiansHistoryHandler(svc))

	r.Route("/users/{userID}/pets", func(ur chi.Router) {
		ur.Get("/", activePetsHandler(svc))
		ur.Get("/history", petsHistoryHandler(svc))
	})

	r.Get("/registrations", listRegistrationsHandler(svc))
}

type guardianRequest struct {
	UserID int64 `json:"user_id"`
}

type guardianResponse struct {
	PetID        int64         `json:"pet_id"`
	Guardian     any           `json:"guardian"`
	Registration *Registration `json:"registration,omitempty"`
}

// petHistoryEntry es una fila de allPetsEverGuardedBy / activePetsOf.
type petHistoryEntry struct {
	RegistrationID int64     `json:"registration_id"`
	PetID          int64     `json:"pet_id"`
	Species        string    `json:"species"`
	Nickname       string    `json:"nickname"`
	ImageURL       string    `json:"image_url,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
	ReleasedAt     time.Time `json:"released_at"`
	Released       bool      `json:"released"`
}

type userHistoryEntry struct {
	RegistrationID int64     `json:"registration_id"`
	UserID         int64     `json:"user_id"`
	Nickname       string    `json:"nickname"`
	RegisteredAt   time.Time `json:"registered_at"`
	ReleasedAt     time.Time `json:"released_at"`
	Released       bool      `json:"released"`
}

// registerHandler godoc
// @Summary Registrar guardián
// @Description Asigna al usuario como guardián activo de la mascota. Falla con 409 si la mascota ya tiene guardián activo.
// @Tags registrations
// @Accept json
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param payload body guardianRequest true "Usuario guardián"
// @Success 201 {object} Registration
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "pet o user no encontrados"
// @Failure 409 {object} respond.ErrorBody "pet already has an active guardian"
// @Router /pets/{petID}/registration [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, userID, err := parseGuardianRequest(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		reg, err := svc.Register(r.Context(), petID, userID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, reg)
	}
}

// releaseHandler godoc
// @Summary Liberar guardián
// @Description Termina la registración activa (pet, user). 404 si no existe una que coincida.
// @Tags registrations
// @Accept json
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param payload body guardianRequest true "Usuario guardián"
// @Success 200 {object} Registration
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "no active registration"
// @Failure 500 {object} respond.ErrorBody
// @Router /pets/{petID}/registration/release [post]
func releaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, userID, err := parseGuardianRequest(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		reg, err := svc.Unregister(r.Context(), petID, userID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, reg)
	}
}

// currentGuardianHandler godoc
// @Summary Guardián actual
// @Description Devuelve el guardián activo (aunque esté dado de baja) o guardian=null.
// @Tags registrations
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Success 200 {object} guardianResponse
// @Failure 404 {object} respond.ErrorBody "pet not found"
// @Router /pets/{petID}/guardian [get]
func currentGuardianHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, err := pets.ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		g, err := svc.CurrentGuardianOf(r.Context(), petID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		resp := guardianResponse{PetID: petID, Registration: g.Registration}
		if g.User != nil {
			resp.Guardian = users.ToResponse(*g.User)
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}

// guardiansHistoryHandler godoc
// @Summary Historial de guardianes
// @Description Todos los guardianes que tuvo la mascota, el más reciente primero. Excluye usuarios dados de baja.
// @Tags registrations
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param first query int false "Tamaño de página (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1)"
// @Param pageSize query int false "Tamaño de página en modo offset"
// @Success 200 {object} paging.Connection[userHistoryEntry]
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "pet not found"
// @Router /pets/{petID}/guardians [get]
func guardiansHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		petID, err := pets.ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		req, err := paging.FromQuery(r.URL.Query())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		conn, err := svc.GuardiansEverOf(r.Context(), petID, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, paging.Map(conn, toUserHistoryEntry))
	}
}

// activePetsHandler godoc
// @Summary Mascotas activas del usuario
// @Tags registrations
// @Produce json
// @Param userID path int true "ID del usuario"
// @Param first query int false "Tamaño de página (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1)"
// @Param pageSize query int false "Tamaño de página en modo offset"
// @Success 200 {object} paging.Connection[petHistoryEntry]
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "user not found"
// @Router /users/{userID}/pets [get]
func activePetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, req, err := parseUserList(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		conn, err := svc.ActivePetsOf(r.Context(), userID, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, paging.Map(conn, toPetHistoryEntry))
	}
}

// petsHistoryHandler godoc
// @Summary Historial de mascotas del usuario
// @Description Todas las registraciones del usuario (activas y liberadas), la más reciente primero.
// @Tags registrations
// @Produce json
// @Param userID path int true "ID del usuario"
// @Param first query int false "Tamaño de página (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1)"
// @Param pageSize query int false "Tamaño de página en modo offset"
// @Success 200 {object} paging.Connection[petHistoryEntry]
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "user not found"
// @Router /users/{userID}/pets/history [get]
func petsHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, req, err := parseUserList(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		conn, err := svc.PetsEverGuardedBy(r.Context(), userID, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, paging.Map(conn, toPetHistoryEntry))
	}
}

// listRegistrationsHandler godoc
// @Summary Listar registraciones
// @Description Filtros opcionales pet_id, user_id y released. Orden: registración más nueva primero.
// @Tags registrations
// @Produce json
// @Param pet_id query int false "Filtrar por mascota"
// @Param user_id query int false "Filtrar por usuario"
// @Param released query bool false "Filtrar por estado"
// @Param first query int false "Tamaño de página (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1)"
// @Param pageSize query int false "Tamaño de página en modo offset"
// @Success 200 {object} paging.Connection[Registration]
// @Failure 400 {object} respond.ErrorBody
// @Router /registrations [get]
func listRegistrationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		req, err := paging.FromQuery(r.URL.Query())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		conn, err := svc.List(r.Context(), f, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, conn)
	}
}

// -------------------------
// helpers
// -------------------------

func parseGuardianRequest(r *http.Request) (int64, int64, error) {
	petID, err := pets.ParseID(chi.URLParam(r, "petID"))
	if err != nil {
		return 0, 0, err
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req guardianRequest
	if err := dec.Decode(&req); err != nil {
		return 0, 0, apperr.BadRequest("invalid json")
	}
	if req.UserID <= 0 {
		return 0, 0, apperr.BadRequest("user_id must be a positive integer")
	}
	return petID, req.UserID, nil
}

func parseUserList(r *http.Request) (int64, paging.Request, error) {
	userID, err := users.ParseID(chi.URLParam(r, "userID"))
	if err != nil {
		return 0, paging.Request{}, err
	}
	req, err := paging.FromQuery(r.URL.Query())
	if err != nil {
		return 0, paging.Request{}, err
	}
	return userID, req, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	var f Filter

	if v := strings.TrimSpace(q.Get("pet_id")); v != "" {
		id, err := pets.ParseID(v)
		if err != nil {
			return Filter{}, err
		}
		f = f.And(ByPetID(id))
	}
	if v := strings.TrimSpace(q.Get("user_id")); v != "" {
		id, err := users.ParseID(v)
		if err != nil {
			return Filter{}, err
		}
		f = f.And(ByUserID(id))
	}
	if v := strings.TrimSpace(q.Get("released")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Filter{}, apperr.BadRequest("released must be a boolean")
		}
		f = f.And(ByReleased(b))
	}
	return f, nil
}

func toPetHistoryEntry(e PetEntry) petHistoryEntry {
	return petHistoryEntry{
		RegistrationID: e.Registration.ID,
		PetID:          e.Pet.ID,
		Species:        e.Pet.Species,
		Nickname:       e.Pet.Nickname,
		ImageURL:       e.Pet.ImageURL,
		RegisteredAt:   e.Registration.RegisteredAt,
		ReleasedAt:     e.Registration.ReleasedAt,
		Released:       e.Registration.Released,
	}
}

func toUserHistoryEntry(e UserEntry) userHistoryEntry {
	return userHistoryEntry{
		RegistrationID: e.Registration.ID,
		UserID:         e.User.ID,
		Nickname:       e.User.Nickname,
		RegisteredAt:   e.Registration.RegisteredAt,
		ReleasedAt:     e.Registration.ReleasedAt,
		Released:       e.Registration.Released,
	}
}
