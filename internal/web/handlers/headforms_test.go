package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/mask-fitter/internal/database"
)

func TestHeadformsHandler_List(t *testing.T) {
	handler := NewHeadformsHandler(testServices(t))

	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest("GET", "/api/v1/headforms", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}

	var result []map[string]any
	decodeBody(t, recorder, &result)

	if len(result) != 5 {
		t.Fatalf("expected 5 profiles, got %d", len(result))
	}
	if result[3]["name"] != "long_narrow" || result[3]["display_name"] != "Long Narrow" {
		t.Errorf("unexpected fourth profile: %v", result[3])
	}
	breadth, ok := result[0]["bizygomatic_breadth"].(map[string]any)
	if !ok || breadth["min"] != float64(125) || breadth["max"] != float64(135) {
		t.Errorf("unexpected small breadth range: %v", result[0]["bizygomatic_breadth"])
	}
}

func TestHeadformsHandler_StorageDisabled(t *testing.T) {
	handler := NewHeadformsHandler(testServices(t))

	tests := []struct {
		name    string
		path    string
		handler http.HandlerFunc
	}{
		{"references", "/api/v1/headforms/references", handler.References},
		{"nearest", "/api/v1/headforms/nearest?bizygomatic_breadth=140&menton_sellion=120", handler.Nearest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			tc.handler(recorder, httptest.NewRequest("GET", tc.path, nil))
			if recorder.Code != http.StatusServiceUnavailable {
				t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, recorder.Code)
			}
		})
	}
}

func TestHeadformsHandler_References(t *testing.T) {
	svc := testServices(t)
	headforms, _ := withStorage(svc)
	headforms.AddHeadform(database.StoredHeadform{Category: "small", BizygomaticBreadth: 130, MentonSellion: 110, VertexCount: 9000})
	headforms.AddHeadform(database.StoredHeadform{Category: "large", BizygomaticBreadth: 152, MentonSellion: 130, VertexCount: 9500})

	recorder := httptest.NewRecorder()
	NewHeadformsHandler(svc).References(recorder, httptest.NewRequest("GET", "/api/v1/headforms/references", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var result []ReferenceResponse
	decodeBody(t, recorder, &result)
	if len(result) != 2 || result[0].Category != "large" || result[1].VertexCount != 9000 {
		t.Errorf("unexpected references: %+v", result)
	}
	if result[0].Distance != nil {
		t.Error("listing should not carry distances")
	}
}

func TestHeadformsHandler_References_Error(t *testing.T) {
	svc := testServices(t)
	headforms, _ := withStorage(svc)
	headforms.ListError = errors.New("connection refused")

	recorder := httptest.NewRecorder()
	NewHeadformsHandler(svc).References(recorder, httptest.NewRequest("GET", "/api/v1/headforms/references", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}

func TestHeadformsHandler_Nearest(t *testing.T) {
	svc := testServices(t)
	headforms, _ := withStorage(svc)
	headforms.AddHeadform(database.StoredHeadform{Category: "medium", BizygomaticBreadth: 143, MentonSellion: 124})
	headforms.AddHeadform(database.StoredHeadform{Category: "large", BizygomaticBreadth: 152, MentonSellion: 130})
	headforms.AddHeadform(database.StoredHeadform{Category: "small", BizygomaticBreadth: 130, MentonSellion: 110})
	handler := NewHeadformsHandler(svc)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFirst  string
		wantLen    int
	}{
		{name: "default limit", query: "bizygomatic_breadth=140&menton_sellion=120", wantStatus: 200, wantFirst: "medium", wantLen: 1},
		{name: "limit 3", query: "bizygomatic_breadth=150&menton_sellion=129&limit=3", wantStatus: 200, wantFirst: "large", wantLen: 3},
		{name: "missing breadth", query: "menton_sellion=120", wantStatus: 400},
		{name: "negative length", query: "bizygomatic_breadth=140&menton_sellion=-1", wantStatus: 400},
		{name: "nan breadth", query: "bizygomatic_breadth=NaN&menton_sellion=120", wantStatus: 400},
		{name: "limit too high", query: "bizygomatic_breadth=140&menton_sellion=120&limit=9", wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Nearest(recorder, httptest.NewRequest("GET", "/api/v1/headforms/nearest?"+tt.query, nil))

			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result []ReferenceResponse
			decodeBody(t, recorder, &result)
			if len(result) != tt.wantLen {
				t.Fatalf("expected %d results, got %d", tt.wantLen, len(result))
			}
			if result[0].Category != tt.wantFirst {
				t.Errorf("nearest = %q, want %q", result[0].Category, tt.wantFirst)
			}
			if result[0].Distance == nil {
				t.Error("expected a distance")
			}
		})
	}
}

func TestHeadformsHandler_Nearest_ExactDistance(t *testing.T) {
	svc := testServices(t)
	headforms, _ := withStorage(svc)
	headforms.AddHeadform(database.StoredHeadform{Category: "medium", BizygomaticBreadth: 143, MentonSellion: 124})

	recorder := httptest.NewRecorder()
	NewHeadformsHandler(svc).Nearest(recorder, httptest.NewRequest("GET", "/api/v1/headforms/nearest?bizygomatic_breadth=140&menton_sellion=120", nil))

	var result []ReferenceResponse
	decodeBody(t, recorder, &result)
	if len(result) != 1 || *result[0].Distance != 5 {
		t.Errorf("expected distance 5 (3-4-5 triangle), got %+v", result)
	}
}

func TestHeadformsHandler_Nearest_EmptyIndex(t *testing.T) {
	svc := testServices(t)
	headforms, _ := withStorage(svc)
	headforms.FindNearestError = database.ErrIndexEmpty

	recorder := httptest.NewRecorder()
	NewHeadformsHandler(svc).Nearest(recorder, httptest.NewRequest("GET", "/api/v1/headforms/nearest?bizygomatic_breadth=140&menton_sellion=120", nil))

	if recorder.Code != http.StatusOK || recorder.Body.String() != "[]\n" {
		t.Errorf("expected empty list, got %d %s", recorder.Code, recorder.Body.String())
	}
}
