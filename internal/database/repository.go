package database

import (
	"context"
)

// HeadformReader provides read-only access to reference headforms
type HeadformReader interface {
	// Get retrieves a headform by category, returns nil if not found
	Get(ctx context.Context, category string) (*StoredHeadform, error)
	// List returns all reference headforms ordered by category
	List(ctx context.Context) ([]StoredHeadform, error)
	// Count returns the number of stored headforms
	Count(ctx context.Context) (int, error)
	// FindNearest returns the headforms closest to the given shape by
	// Euclidean distance in millimetres, nearest first
	FindNearest(ctx context.Context, bizygomatic, mentonSellion float64, limit int) ([]StoredHeadform, []float64, error)
}

// HeadformWriter provides write access to reference headforms
type HeadformWriter interface {
	HeadformReader

	// Save stores a headform, replacing any existing one for the category
	Save(ctx context.Context, h StoredHeadform) error
	// Delete removes the headform for a category
	Delete(ctx context.Context, category string) error
}

// FitRecordReader provides read-only access to fitting sessions
type FitRecordReader interface {
	// GetFit retrieves a fit record by ID, returns nil if not found
	GetFit(ctx context.Context, id string) (*FitRecord, error)
	// ListFits returns the most recent fit records, newest first
	ListFits(ctx context.Context, limit int) ([]FitRecord, error)
}

// FitRecordWriter provides write access to fitting sessions
type FitRecordWriter interface {
	FitRecordReader

	// SaveFit stores a fit record
	SaveFit(ctx context.Context, r FitRecord) error
}
