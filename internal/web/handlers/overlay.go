package handlers

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/overlay"
)

// OverlayHandler renders landmark overlays
type OverlayHandler struct {
	services *Services
}

// NewOverlayHandler creates a new overlay handler
func NewOverlayHandler(svc *Services) *OverlayHandler {
	return &OverlayHandler{services: svc}
}

// OverlayRequest carries a base64 encoded image and its detection
type OverlayRequest struct {
	Image     string                `json:"image" validate:"required,base64"`
	Detection measurement.Detection `json:"detection"`
	MaxSize   int                   `json:"max_size" validate:"omitempty,min=16,max=4096"`
}

// Render draws the first face's landmarks and measurement lines and
// returns the result as PNG
func (h *OverlayHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req OverlayRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}
	src, err := overlay.Decode(bytes.NewReader(raw))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := overlay.DefaultOptions()
	opts.MaxSize = req.MaxSize
	img, err := overlay.Render(src, req.Detection, opts)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	data, err := overlay.EncodePNG(img)
	if err != nil {
		log.FromContext(r.Context()).WithError(err).Error("encoding overlay")
		respondError(w, http.StatusInternalServerError, "failed to encode overlay")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
