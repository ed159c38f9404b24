package database

// HNSW parameters for the two-dimensional headform shape index.
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	HNSWMaxNeighbors = 8

	// HNSWEfSearch is the search candidate pool size. The reference table is
	// small, so this covers every node.
	HNSWEfSearch = 64
)

// DefaultFitListLimit caps fit record listings when no limit is given.
const DefaultFitListLimit = 50
