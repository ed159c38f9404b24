// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/mask-fitter/internal/database"
)

// MockHeadformWriter is a mock implementation of database.HeadformWriter
type MockHeadformWriter struct {
	mu        sync.RWMutex
	headforms map[string]*database.StoredHeadform

	// Error injection
	GetError         error
	ListError        error
	CountError       error
	FindNearestError error
	SaveError        error
	DeleteError      error
}

// NewMockHeadformWriter creates a new mock headform writer
func NewMockHeadformWriter() *MockHeadformWriter {
	return &MockHeadformWriter{
		headforms: make(map[string]*database.StoredHeadform),
	}
}

// AddHeadform adds a headform to the mock store
func (m *MockHeadformWriter) AddHeadform(h database.StoredHeadform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headforms[h.Category] = &h
}

// Get retrieves a headform by category
func (m *MockHeadformWriter) Get(ctx context.Context, category string) (*database.StoredHeadform, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.headforms[category]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

// List returns all headforms ordered by category
func (m *MockHeadformWriter) List(ctx context.Context) ([]database.StoredHeadform, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(), nil
}

func (m *MockHeadformWriter) sorted() []database.StoredHeadform {
	out := make([]database.StoredHeadform, 0, len(m.headforms))
	for _, h := range m.headforms {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Count returns the number of headforms
func (m *MockHeadformWriter) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.headforms), nil
}

// FindNearest does a linear scan by Euclidean distance
func (m *MockHeadformWriter) FindNearest(ctx context.Context, bizygomatic, mentonSellion float64, limit int) ([]database.StoredHeadform, []float64, error) {
	if m.FindNearestError != nil {
		return nil, nil, m.FindNearestError
	}
	m.mu.RLock()
	all := m.sorted()
	m.mu.RUnlock()

	distance := func(h database.StoredHeadform) float64 {
		return math.Hypot(h.BizygomaticBreadth-bizygomatic, h.MentonSellion-mentonSellion)
	}
	sort.SliceStable(all, func(i, j int) bool { return distance(all[i]) < distance(all[j]) })

	if limit < len(all) {
		all = all[:max(limit, 0)]
	}
	distances := make([]float64, len(all))
	for i, h := range all {
		distances[i] = distance(h)
	}
	return all, distances, nil
}

// Save stores a headform
func (m *MockHeadformWriter) Save(ctx context.Context, h database.StoredHeadform) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = time.Now()
	}
	m.AddHeadform(h)
	return nil
}

// Delete removes a headform
func (m *MockHeadformWriter) Delete(ctx context.Context, category string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.headforms, category)
	return nil
}

// MockFitRecordWriter is a mock implementation of database.FitRecordWriter
type MockFitRecordWriter struct {
	mu      sync.RWMutex
	records map[string]database.FitRecord

	// Error injection
	SaveError error
	GetError  error
	ListError error
}

// NewMockFitRecordWriter creates a new mock fit record writer
func NewMockFitRecordWriter() *MockFitRecordWriter {
	return &MockFitRecordWriter{
		records: make(map[string]database.FitRecord),
	}
}

// SaveFit stores a fit record
func (m *MockFitRecordWriter) SaveFit(ctx context.Context, r database.FitRecord) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Recommendations = append([]string(nil), r.Recommendations...)
	m.records[r.ID] = r
	return nil
}

// GetFit retrieves a fit record by ID
func (m *MockFitRecordWriter) GetFit(ctx context.Context, id string) (*database.FitRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ListFits returns records newest first
func (m *MockFitRecordWriter) ListFits(ctx context.Context, limit int) ([]database.FitRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	if limit <= 0 {
		limit = database.DefaultFitListLimit
	}
	m.mu.RLock()
	out := make([]database.FitRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored records
func (m *MockFitRecordWriter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

var (
	_ database.HeadformWriter  = (*MockHeadformWriter)(nil)
	_ database.FitRecordWriter = (*MockFitRecordWriter)(nil)
)
