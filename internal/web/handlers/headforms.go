package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/log"
)

const maxNearestLimit = 5

// HeadformsHandler serves the profile table and stored reference headforms
type HeadformsHandler struct {
	services *Services
}

// NewHeadformsHandler creates a new headforms handler
func NewHeadformsHandler(svc *Services) *HeadformsHandler {
	return &HeadformsHandler{services: svc}
}

// ProfileResponse is one face-size profile with its display name
type ProfileResponse struct {
	headform.Profile
	DisplayName string `json:"display_name"`
}

// ReferenceResponse is a stored reference headform
type ReferenceResponse struct {
	Category           string    `json:"category"`
	BizygomaticBreadth float64   `json:"bizygomatic_breadth"`
	MentonSellion      float64   `json:"menton_sellion"`
	FaceWidth          float64   `json:"face_width"`
	FaceLength         float64   `json:"face_length"`
	FaceDepth          float64   `json:"face_depth"`
	VertexCount        int       `json:"vertex_count"`
	SourceFile         string    `json:"source_file,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
	Distance           *float64  `json:"distance_mm,omitempty"`
}

func referenceResponse(h database.StoredHeadform) ReferenceResponse {
	return ReferenceResponse{
		Category:           h.Category,
		BizygomaticBreadth: h.BizygomaticBreadth,
		MentonSellion:      h.MentonSellion,
		FaceWidth:          h.FaceWidth,
		FaceLength:         h.FaceLength,
		FaceDepth:          h.FaceDepth,
		VertexCount:        h.VertexCount,
		SourceFile:         h.SourceFile,
		UpdatedAt:          h.UpdatedAt,
	}
}

// List returns the profile table in match order
func (h *HeadformsHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.services.Pipeline.Classifier.Profiles()
	response := make([]ProfileResponse, len(profiles))
	for i, p := range profiles {
		response[i] = ProfileResponse{Profile: p, DisplayName: headform.DisplayName(p.Name)}
	}
	respondJSON(w, http.StatusOK, response)
}

// References returns every stored reference headform
func (h *HeadformsHandler) References(w http.ResponseWriter, r *http.Request) {
	if h.services.Headforms == nil {
		respondError(w, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}

	stored, err := h.services.Headforms.List(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WithError(err).Error("listing reference headforms")
		respondError(w, http.StatusInternalServerError, "failed to list reference headforms")
		return
	}

	response := make([]ReferenceResponse, len(stored))
	for i, s := range stored {
		response[i] = referenceResponse(s)
	}
	respondJSON(w, http.StatusOK, response)
}

// Nearest returns the stored headforms closest to a measured shape.
// Query: bizygomatic_breadth, menton_sellion, optional limit (1-5).
func (h *HeadformsHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	if h.services.Headforms == nil {
		respondError(w, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}

	q := r.URL.Query()
	bizyg, err := strconv.ParseFloat(q.Get("bizygomatic_breadth"), 64)
	if err != nil || !plausibleMillimetres(bizyg) {
		respondError(w, http.StatusBadRequest, "bizygomatic_breadth must be a positive number")
		return
	}
	mensell, err := strconv.ParseFloat(q.Get("menton_sellion"), 64)
	if err != nil || !plausibleMillimetres(mensell) {
		respondError(w, http.StatusBadRequest, "menton_sellion must be a positive number")
		return
	}
	limit := 1
	if s := q.Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxNearestLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 5")
			return
		}
	}

	found, distances, err := h.services.Headforms.FindNearest(r.Context(), bizyg, mensell, limit)
	if err != nil {
		if errors.Is(err, database.ErrIndexEmpty) {
			respondJSON(w, http.StatusOK, []ReferenceResponse{})
			return
		}
		log.FromContext(r.Context()).WithError(err).Error("finding nearest reference headform")
		respondError(w, http.StatusInternalServerError, "failed to find nearest reference headform")
		return
	}

	response := make([]ReferenceResponse, len(found))
	for i, s := range found {
		response[i] = referenceResponse(s)
		response[i].Distance = &distances[i]
	}
	respondJSON(w, http.StatusOK, response)
}

// plausibleMillimetres rejects NaN, infinities and values no face reaches.
func plausibleMillimetres(v float64) bool {
	return v > 0 && v <= 1000
}
