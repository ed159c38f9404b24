package handlers

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/mask-fitter/internal/measurement"
)

func testImageBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestOverlayHandler_Render(t *testing.T) {
	handler := NewOverlayHandler(testServices(t))

	body := OverlayRequest{
		Image:     testImageBase64(t, 320, 240),
		Detection: measurement.Detection{Width: 320, Height: 240, Faces: []measurement.LandmarkSet{pixelFace()}},
		MaxSize:   160,
	}
	recorder := httptest.NewRecorder()
	handler.Render(recorder, jsonRequest(t, "POST", "/api/v1/overlay", body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected Content-Type 'image/png', got '%s'", ct)
	}
	img, err := png.Decode(recorder.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
		t.Errorf("expected 160x120 overlay, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestOverlayHandler_Render_Errors(t *testing.T) {
	handler := NewOverlayHandler(testServices(t))

	tests := []struct {
		name string
		body OverlayRequest
	}{
		{name: "missing image", body: OverlayRequest{}},
		{name: "not base64", body: OverlayRequest{Image: "%%%"}},
		{name: "not an image", body: OverlayRequest{Image: base64.StdEncoding.EncodeToString([]byte("hello"))}},
		{name: "max size too small", body: OverlayRequest{Image: testImageBase64(t, 8, 8), MaxSize: 4}},
		{
			name: "face without image size",
			body: OverlayRequest{
				Image:     testImageBase64(t, 8, 8),
				Detection: measurement.Detection{Faces: []measurement.LandmarkSet{pixelFace()}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Render(recorder, jsonRequest(t, "POST", "/api/v1/overlay", tt.body))
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d (%s)", http.StatusBadRequest, recorder.Code, recorder.Body.String())
			}
		})
	}
}
