package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func candidateIDs(resp RecommendResponse) []string {
	ids := make([]string, len(resp.Candidates))
	for i, c := range resp.Candidates {
		ids[i] = c.ID()
	}
	return ids
}

func TestCatalogHandler_Get(t *testing.T) {
	handler := NewCatalogHandler(testServices(t))

	tests := []struct {
		category  string
		wantFirst string
		wantLen   int
	}{
		{category: "long_narrow", wantFirst: "3M 9205+ Aura - Regular", wantLen: 3},
		{category: "medium", wantFirst: "3M 8210 N95 - Regular", wantLen: 4},
		{category: "unknown", wantFirst: "3M 8210 N95 - Regular", wantLen: 4},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/catalog/"+tt.category, nil), map[string]string{"category": tt.category})
			recorder := httptest.NewRecorder()
			handler.Get(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
			}
			var result RecommendResponse
			decodeBody(t, recorder, &result)
			if len(result.Candidates) != tt.wantLen || result.Candidates[0].ID() != tt.wantFirst {
				t.Errorf("unexpected candidates: %v", candidateIDs(result))
			}
		})
	}
}

func TestCatalogHandler_Recommend(t *testing.T) {
	handler := NewCatalogHandler(testServices(t))

	tests := []struct {
		name       string
		body       RecommendRequest
		wantStatus int
		wantIDs    []string
	}{
		{
			name:       "no inventory keeps catalog order",
			body:       RecommendRequest{Category: "small"},
			wantStatus: http.StatusOK,
			wantIDs:    []string{"3M 8210 N95 - Small", "Honeywell DF300N95 - Small", "Moldex 2200 N95 - Small"},
		},
		{
			name: "inventory subset keeps catalog order",
			body: RecommendRequest{Category: "medium", Available: []string{
				"MSA Advantage 200 - Medium",
				"3M 8210 N95 - Regular",
			}},
			wantStatus: http.StatusOK,
			wantIDs:    []string{"3M 8210 N95 - Regular", "MSA Advantage 200 - Medium"},
		},
		{
			name:       "disjoint inventory is empty",
			body:       RecommendRequest{Category: "large", Available: []string{"Nothing - X"}},
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
		},
		{
			name:       "missing category",
			body:       RecommendRequest{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Recommend(recorder, jsonRequest(t, "POST", "/api/v1/recommend", tt.body))

			if recorder.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result RecommendResponse
			decodeBody(t, recorder, &result)
			if result.Candidates == nil {
				t.Fatal("expected candidates array, got null")
			}
			got := candidateIDs(result)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("position %d = %q, want %q", i, got[i], tt.wantIDs[i])
				}
			}
		})
	}
}
