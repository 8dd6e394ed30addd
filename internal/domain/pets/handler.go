package pets

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
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type createPetRequest struct {
	Species  string `json:"species"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"image_url"`
}

// updatePetRequest: PATCH parcial, solo se tocan los campos presentes.
type updatePetRequest struct {
	Species  *string `json:"species,omitempty"`
	Nickname *string `json:"nickname,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

type petResponse struct {
	ID        int64     `json:"id"`
	Species   string    `json:"species"`
	Nickname  string    `json:"nickname"`
	ImageURL  string    `json:"image_url,omitempty"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Crea una mascota sin guardián. image_url es opcional y debe ser una URL http(s) absoluta.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {object} respond.ErrorBody "json inválido / validación"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, r, apperr.BadRequest("invalid json"))
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Species:  req.Species,
			Nickname: req.Nickname,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Tags pets
// @Produce json
// @Param first query int false "Tamaño de página en modo cursor (1-100)"
// @Param after query string false "endCursor de la página anterior"
// @Param page query int false "Número de página (>= 1)"
// @Param pageSize query int false "Tamaño de página en modo offset (1-100)"
// @Param fields query string false "CSV de id,species,nickname,image_url,deleted"
// @Success 200 {object} paging.Connection[petResponse]
// @Failure 400 {object} respond.ErrorBody
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
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

		respond.JSON(w, http.StatusOK, paging.Map(conn, func(p Pet) any { return project(p, fields) }))
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param fields query string false "CSV de id,species,nickname,image_url,deleted"
// @Success 200 {object} petResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		fields, err := ParseFields(r.URL.Query().Get("fields"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, project(p, fields))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path int true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a cambiar"
// @Success 200 {object} petResponse
// @Failure 400 {object} respond.ErrorBody
// @Failure 404 {object} respond.ErrorBody "pet not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var req updatePetRequest
		if err := dec.Decode(&req); err != nil {
			respond.Error(w, r, apperr.BadRequest("invalid json"))
			return
		}

		p, err := svc.Update(r.Context(), id, UpdateInput{
			Species:  req.Species,
			Nickname: req.Nickname,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, toPetResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Dar de baja mascota
// @Tags pets
// @Param petID path int true "ID de la mascota"
// @Success 204
// @Failure 404 {object} respond.ErrorBody "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(chi.URLParam(r, "petID"))
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

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		Species:   p.Species,
		Nickname:  p.Nickname,
		ImageURL:  p.ImageURL,
		Deleted:   p.Deleted,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToResponse(p Pet) any { return toPetResponse(p) }

func project(p Pet, fields []Field) any {
	if len(fields) == 0 {
		return toPetResponse(p)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case FieldID:
			out[string(f)] = p.ID
		case FieldSpecies:
			out[string(f)] = p.Species
		case FieldNickname:
			out[string(f)] = p.Nickname
		case FieldImageURL:
			out[string(f)] = p.ImageURL
		case FieldDeleted:
			out[string(f)] = p.Deleted
		}
	}
	return out
}

// ParseID valida el {petID} de la ruta. Lo reusan las rutas de registración.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("pet id must be a positive integer")
	}
	return id, nil
}
