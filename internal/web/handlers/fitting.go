package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

const maxFitListLimit = 500

// FittingHandler runs the measure, classify and fit stages
type FittingHandler struct {
	services *Services
}

// NewFittingHandler creates a new fitting handler
func NewFittingHandler(svc *Services) *FittingHandler {
	return &FittingHandler{services: svc}
}

// MeasureResponse carries the measurements of the first detected face
type MeasureResponse struct {
	Measurements measurement.MeasurementSet `json:"measurements"`
	Faces        int                        `json:"faces"`
}

// ClassifyResponse is a classification with its display name
type ClassifyResponse struct {
	headform.Result
	DisplayName string `json:"display_name"`
}

// FitRequest runs a full fitting session from either a detection or
// measurements taken elsewhere.
type FitRequest struct {
	Subject      fitting.Subject             `json:"subject"`
	Detection    *measurement.Detection      `json:"detection" validate:"required_without=Measurements"`
	Measurements *measurement.MeasurementSet `json:"measurements" validate:"required_without=Detection"`
	Available    []string                    `json:"available" validate:"omitempty,dive,required"`
}

// FitRecordResponse is a stored fitting session
type FitRecordResponse struct {
	ID                string                     `json:"id"`
	SubjectName       string                     `json:"subject_name,omitempty"`
	DateOfBirth       string                     `json:"date_of_birth,omitempty"`
	Measurements      measurement.MeasurementSet `json:"measurements"`
	Category          string                     `json:"category"`
	DisplayName       string                     `json:"display_name"`
	Confidence        int                        `json:"confidence"`
	Matched           bool                       `json:"matched"`
	Recommendations   []string                   `json:"recommendations"`
	InventoryFallback bool                       `json:"inventory_fallback"`
	NearestReference  string                     `json:"nearest_reference,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
}

func fitRecordResponse(rec *database.FitRecord) FitRecordResponse {
	recommendations := rec.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	return FitRecordResponse{
		ID:                rec.ID,
		SubjectName:       rec.SubjectName,
		DateOfBirth:       rec.DateOfBirth,
		Measurements:      rec.Measurements,
		Category:          rec.Category,
		DisplayName:       headform.DisplayName(rec.Category),
		Confidence:        rec.Confidence,
		Matched:           rec.Matched,
		Recommendations:   recommendations,
		InventoryFallback: rec.InventoryFallback,
		NearestReference:  rec.NearestReference,
		CreatedAt:         rec.CreatedAt,
	}
}

// Measure converts a landmark detection into millimetre measurements
func (h *FittingHandler) Measure(w http.ResponseWriter, r *http.Request) {
	var det measurement.Detection
	if !decodeRequest(w, r, &det) {
		return
	}

	m, ok, err := h.services.Pipeline.Landmarks.Extract(det)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !ok {
		respondDomainError(w, r, fitting.ErrNoFace)
		return
	}

	respondJSON(w, http.StatusOK, MeasureResponse{Measurements: m, Faces: len(det.Faces)})
}

// Classify assigns a face-size category to a measurement set
func (h *FittingHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var m measurement.MeasurementSet
	if !decodeRequest(w, r, &m) {
		return
	}
	if err := m.ValidateShape(); err != nil {
		respondDomainError(w, r, err)
		return
	}

	result, err := h.services.Pipeline.Classifier.Classify(m)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ClassifyResponse{Result: result, DisplayName: headform.DisplayName(result.Category)})
}

// Fit runs a full session and stores it when storage is configured
func (h *FittingHandler) Fit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var (
		session *fitting.Session
		err     error
	)
	if req.Measurements != nil {
		session, err = h.services.Pipeline.Run(r.Context(), fitting.Request{
			Subject:      req.Subject,
			Measurements: *req.Measurements,
			Available:    req.Available,
		})
	} else {
		session, err = h.services.Pipeline.RunDetection(r.Context(), *req.Detection, req.Subject, req.Available)
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if h.services.Fits != nil {
		if err := h.services.Fits.SaveFit(r.Context(), session.Record()); err != nil {
			log.FromContext(r.Context()).WithError(err).Error("saving fit record")
			respondError(w, http.StatusInternalServerError, "failed to save fitting session")
			return
		}
	}

	log.FromContext(r.Context()).WithFields(log.Fields{
		"session":  session.ID,
		"category": session.Result.Category,
	}).Info("fitting session completed")
	respondJSON(w, http.StatusOK, session)
}

// ListFits returns the most recent stored sessions, newest first.
// Query: optional limit (1-500).
func (h *FittingHandler) ListFits(w http.ResponseWriter, r *http.Request) {
	if h.services.Fits == nil {
		respondError(w, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}

	limit := database.DefaultFitListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxFitListLimit {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	records, err := h.services.Fits.ListFits(r.Context(), limit)
	if err != nil {
		log.FromContext(r.Context()).WithError(err).Error("listing fit records")
		respondError(w, http.StatusInternalServerError, "failed to list fitting sessions")
		return
	}

	response := make([]FitRecordResponse, len(records))
	for i := range records {
		response[i] = fitRecordResponse(&records[i])
	}
	respondJSON(w, http.StatusOK, response)
}

// GetFit returns a stored fitting session
func (h *FittingHandler) GetFit(w http.ResponseWriter, r *http.Request) {
	if h.services.Fits == nil {
		respondError(w, http.StatusServiceUnavailable, errStorageDisabled)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid fitting session id")
		return
	}
	rec, err := h.services.Fits.GetFit(r.Context(), id)
	if err != nil {
		log.FromContext(r.Context()).WithError(err).WithField("id", sanitizeForLog(id)).Error("loading fit record")
		respondError(w, http.StatusInternalServerError, "failed to load fitting session")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "fitting session not found")
		return
	}

	respondJSON(w, http.StatusOK, fitRecordResponse(rec))
}
