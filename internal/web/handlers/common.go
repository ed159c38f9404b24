package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/database"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/log"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
	"github.com/kozaktomas/mask-fitter/internal/overlay"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// errStorageDisabled is returned by endpoints that need DATABASE_URL.
const errStorageDisabled = "storage not configured"

// maxRequestBody caps JSON bodies; overlay requests carry a base64 image.
const maxRequestBody = 32 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Services bundles what the handlers share. Headforms and Fits are nil when
// no database is configured.
type Services struct {
	Config    *config.Config
	Pipeline  *fitting.Pipeline
	Headforms database.HeadformReader
	Fits      database.FitRecordWriter
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeRequest reads a JSON body into dst and validates it. On failure it
// writes a 400 response and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// respondDomainError maps fitting errors onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fitting.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, measurement.ErrInvalidMeasurement),
		errors.Is(err, fitting.ErrInvalidSubject),
		errors.Is(err, measurement.ErrMissingLandmark),
		errors.Is(err, measurement.ErrInvalidImageSize),
		errors.Is(err, headform.ErrNonFiniteMeasurement),
		errors.Is(err, overlay.ErrInvalidDetection):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.FromContext(r.Context()).WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
