package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/headform"
)

// CatalogHandler serves the respirator catalog and inventory filtering
type CatalogHandler struct {
	services *Services
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *Services) *CatalogHandler {
	return &CatalogHandler{services: svc}
}

// RecommendRequest filters a category's candidates by inventory
type RecommendRequest struct {
	Category  string   `json:"category" validate:"required"`
	Available []string `json:"available" validate:"omitempty,dive,required"`
}

// RecommendResponse lists candidates for a category in catalog order
type RecommendResponse struct {
	Category    string              `json:"category"`
	DisplayName string              `json:"display_name"`
	Candidates  []catalog.Candidate `json:"candidates"`
}

// Get returns the full candidate list for a category.
// Unknown categories get the medium list.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	respondJSON(w, http.StatusOK, RecommendResponse{
		Category:    category,
		DisplayName: headform.DisplayName(category),
		Candidates:  h.services.Pipeline.Catalog.All(category),
	})
}

// Recommend filters the category list by the available inventory. An empty
// result is returned as is; only full fitting runs fall back to the
// unfiltered list.
func (h *CatalogHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	respondJSON(w, http.StatusOK, RecommendResponse{
		Category:    req.Category,
		DisplayName: headform.DisplayName(req.Category),
		Candidates:  h.services.Pipeline.Catalog.Filter(req.Category, catalog.NewAvailability(req.Available)),
	})
}
