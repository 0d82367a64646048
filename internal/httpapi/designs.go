package httpapi

import (
	"net/http"
	"time"

	"github.com/arawak/showroom/internal/catalog"
	"github.com/arawak/showroom/internal/media"
	"github.com/arawak/showroom/internal/store"
)

type Design struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type designListResponse struct {
	Success bool     `json:"success"`
	Designs []Design `json:"designs"`
}

type designResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Design  Design `json:"design"`
}

type createdResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (s *Server) toAPIDesign(d *store.Design) Design {
	return Design{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		ImageURL:    s.assets.URLFor(d.Image, media.Images),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Server) ListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := s.designs.List(r.Context())
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to fetch designs"})
		return
	}
	resp := designListResponse{Success: true, Designs: make([]Design, 0, len(designs))}
	for i := range designs {
		resp.Designs = append(resp.Designs, s.toAPIDesign(&designs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetDesign(w http.ResponseWriter, r *http.Request, id int64) {
	d, err := s.designs.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, failure{notFound: "Design not found", internal: "Failed to fetch design"})
		return
	}
	writeJSON(w, http.StatusOK, designResponse{Success: true, Design: s.toAPIDesign(d)})
}

func (s *Server) CreateDesign(w http.ResponseWriter, r *http.Request) {
	form, err := s.readUpload(w, r, "image", media.Images, s.cfg.MaxImageBytes)
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to create design"})
		return
	}
	created, err := s.designs.Create(r.Context(), catalog.DesignInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Image:       form.file,
	})
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to create design"})
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Success: true, Message: "Design created successfully", ID: created.ID})
}

// UpdateDesign serves both PUT and POST. POST exists for form clients that
// send _method=PUT or X-HTTP-Method-Override; the marker is not required.
func (s *Server) UpdateDesign(w http.ResponseWriter, r *http.Request, id int64) {
	form, err := s.readUpload(w, r, "image", media.Images, s.cfg.MaxImageBytes)
	if err != nil {
		s.fail(w, r, err, failure{internal: "Failed to update design"})
		return
	}
	updated, err := s.designs.Update(r.Context(), id, catalog.DesignInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Image:       form.file,
	})
	if err != nil {
		s.fail(w, r, err, failure{notFound: "Design not found", internal: "Failed to update design"})
		return
	}
	writeJSON(w, http.StatusOK, designResponse{Success: true, Message: "Design updated successfully", Design: s.toAPIDesign(updated)})
}

func (s *Server) DeleteDesign(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.designs.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err, failure{notFound: "Design not found", internal: "Failed to delete design"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Design deleted successfully"})
}
