package handlers

import (
	"net/http"

	"github.com/kozaktomas/mask-fitter/internal/database"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	services *Services
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(svc *Services) *ConfigHandler {
	return &ConfigHandler{
		services: svc,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	MMPerPixel         float64  `json:"mm_per_pixel"`
	MentonSellionRatio float64  `json:"menton_sellion_ratio"`
	SimplifyTarget     int      `json:"simplify_target"`
	Categories         []string `json:"categories"`
	CatalogCategories  []string `json:"catalog_categories"`
	StorageEnabled     bool     `json:"storage_enabled"`
	HNSWEnabled        bool     `json:"hnsw_enabled"`
}

// Get returns the active calibration and what the server can do
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.services.Config.Measurement

	profiles := h.services.Pipeline.Classifier.Profiles()
	categories := make([]string, len(profiles))
	for i, p := range profiles {
		categories[i] = p.Name
	}

	hnswEnabled := false
	if rebuilder := database.GetHeadformHNSWRebuilder(); rebuilder != nil {
		hnswEnabled = rebuilder.IsHNSWEnabled()
	}

	response := ConfigResponse{
		MMPerPixel:         h.services.Pipeline.Landmarks.MMPerPixel,
		MentonSellionRatio: cfg.MentonSellionRatio,
		SimplifyTarget:     cfg.SimplifyTarget,
		Categories:         categories,
		CatalogCategories:  h.services.Pipeline.Catalog.Categories(),
		StorageEnabled:     h.services.Fits != nil,
		HNSWEnabled:        hnswEnabled,
	}

	respondJSON(w, http.StatusOK, response)
}
