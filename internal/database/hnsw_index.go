package database

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"
)

// ErrIndexEmpty is returned by searches on an index with no headforms.
var ErrIndexEmpty = errors.New("headform index is empty")

// HeadformIndex is an in-memory HNSW index over headform shapes
// (bizygomatic breadth, menton-sellion length).
type HeadformIndex struct {
	graph      *hnsw.Graph[string]
	byCategory map[string]StoredHeadform
	mu         sync.RWMutex
}

// NewHeadformIndex creates a new empty index.
func NewHeadformIndex() *HeadformIndex {
	return &HeadformIndex{
		byCategory: make(map[string]StoredHeadform),
	}
}

func newShapeGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors)
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build replaces the index contents with headforms. A later entry for the same
// category replaces an earlier one.
func (h *HeadformIndex) Build(headforms []StoredHeadform) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byCategory = make(map[string]StoredHeadform, len(headforms))
	for _, hf := range headforms {
		h.byCategory[hf.Category] = hf
	}
	h.rebuildGraph()
}

// Add inserts or replaces a single headform.
func (h *HeadformIndex) Add(hf StoredHeadform) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byCategory[hf.Category] = hf
	h.rebuildGraph()
}

// Delete removes a headform. It reports whether the category was indexed.
func (h *HeadformIndex) Delete(category string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.byCategory[category]; !ok {
		return false
	}
	delete(h.byCategory, category)
	h.rebuildGraph()
	return true
}

// rebuildGraph recreates the graph from byCategory in category order.
func (h *HeadformIndex) rebuildGraph() {
	if len(h.byCategory) == 0 {
		h.graph = nil
		return
	}
	categories := make([]string, 0, len(h.byCategory))
	for category := range h.byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	g := newShapeGraph()
	for _, category := range categories {
		g.Add(hnsw.MakeNode(category, h.byCategory[category].Shape()))
	}
	h.graph = g
}

// Nearest returns up to k headforms closest to the given shape, nearest first,
// with their Euclidean distances in millimetres.
func (h *HeadformIndex) Nearest(bizygomatic, mentonSellion float64, k int) ([]StoredHeadform, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil || h.graph.Len() == 0 {
		return nil, nil, ErrIndexEmpty
	}
	if k <= 0 {
		return nil, nil, nil
	}

	neighbors := h.graph.Search(shapeVector(bizygomatic, mentonSellion), k)

	results := make([]StoredHeadform, 0, len(neighbors))
	for _, n := range neighbors {
		if hf, ok := h.byCategory[n.Key]; ok {
			results = append(results, hf)
		}
	}
	// Distances are recomputed in float64; the graph stores float32 shapes.
	distance := func(hf StoredHeadform) float64 {
		return math.Hypot(hf.BizygomaticBreadth-bizygomatic, hf.MentonSellion-mentonSellion)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return distance(results[i]) < distance(results[j])
	})

	distances := make([]float64, len(results))
	for i, hf := range results {
		distances[i] = distance(hf)
	}
	return results, distances, nil
}

// Get returns the indexed headform for category.
func (h *HeadformIndex) Get(category string) (StoredHeadform, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	hf, ok := h.byCategory[category]
	return hf, ok
}

// Count returns the number of indexed headforms.
func (h *HeadformIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byCategory)
}
