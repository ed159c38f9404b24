package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/mask-fitter/internal/catalog"
	"github.com/kozaktomas/mask-fitter/internal/config"
	"github.com/kozaktomas/mask-fitter/internal/database/mock"
	"github.com/kozaktomas/mask-fitter/internal/fitting"
	"github.com/kozaktomas/mask-fitter/internal/headform"
	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

// testServices builds services from the embedded tables with a 1 mm/pixel
// calibration. Storage is left nil.
func testServices(t *testing.T) *Services {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	cfg.Measurement.MMPerPixel = 1

	profiles, err := headform.FromConfig(cfg.Headforms)
	if err != nil {
		t.Fatalf("headform.FromConfig() error: %v", err)
	}
	classifier, err := headform.NewClassifier(profiles)
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}
	cat, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		t.Fatalf("catalog.FromConfig() error: %v", err)
	}
	landmarks, err := measurement.NewLandmarkExtractor(cfg.Measurement.MMPerPixel)
	if err != nil {
		t.Fatalf("NewLandmarkExtractor() error: %v", err)
	}

	return &Services{
		Config:   cfg,
		Pipeline: fitting.NewPipeline(landmarks, classifier, cat, nil),
	}
}

// withStorage attaches mock stores to svc, also as the pipeline's nearest finder.
func withStorage(svc *Services) (*mock.MockHeadformWriter, *mock.MockFitRecordWriter) {
	headforms := mock.NewMockHeadformWriter()
	fits := mock.NewMockFitRecordWriter()
	svc.Headforms = headforms
	svc.Fits = fits
	svc.Pipeline.Nearest = headforms
	return headforms, fits
}

// pixelFace places the measured landmarks for a 140 mm breadth, 120 mm
// menton-sellion and 180 mm face length at 1 mm per pixel.
func pixelFace() measurement.LandmarkSet {
	points := make([]measurement.Point, 468)
	points[measurement.LandmarkRightCheek] = measurement.Point{X: 240, Y: 200}
	points[measurement.LandmarkLeftCheek] = measurement.Point{X: 100, Y: 200}
	points[measurement.LandmarkSellion] = measurement.Point{X: 170, Y: 100}
	points[measurement.LandmarkMenton] = measurement.Point{X: 170, Y: 220}
	points[measurement.LandmarkForeheadTop] = measurement.Point{X: 170, Y: 40}
	return measurement.LandmarkSet{Points: points}
}

// jsonRequest creates a request with body marshalled as JSON
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a recorder body into dst
func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to unmarshal response: %v (body %s)", err, recorder.Body.String())
	}
}
