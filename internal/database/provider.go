package database

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when no storage backend has been registered.
var ErrNotInitialized = errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")

// HNSWRebuilder is an interface for repositories that support HNSW index rebuilding
type HNSWRebuilder interface {
	// RebuildHNSW rebuilds the in-memory HNSW index
	RebuildHNSW(ctx context.Context) error
	// HNSWCount returns the number of items in the HNSW index
	HNSWCount() int
	// IsHNSWEnabled returns whether HNSW is enabled
	IsHNSWEnabled() bool
}

var (
	postgresHeadformReader  func() HeadformReader
	postgresHeadformWriter  func() HeadformWriter
	postgresFitRecordWriter func() FitRecordWriter
	postgresHeadformHNSW    HNSWRebuilder // Singleton for headform HNSW rebuilding
	postgresInitialized     bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the commands to avoid import cycles.
func RegisterPostgresBackend(
	headformReader func() HeadformReader,
	headformWriter func() HeadformWriter,
	fitWriter func() FitRecordWriter,
) {
	postgresHeadformReader = headformReader
	postgresHeadformWriter = headformWriter
	postgresFitRecordWriter = fitWriter
	postgresInitialized = true
}

// ResetBackend clears all registrations.
func ResetBackend() {
	postgresHeadformReader = nil
	postgresHeadformWriter = nil
	postgresFitRecordWriter = nil
	postgresHeadformHNSW = nil
	postgresInitialized = false
}

// RegisterHeadformHNSWRebuilder registers the HNSW rebuilder for the headform repository.
func RegisterHeadformHNSWRebuilder(rebuilder HNSWRebuilder) {
	postgresHeadformHNSW = rebuilder
}

// GetHeadformHNSWRebuilder returns the registered headform HNSW rebuilder, or nil if not registered.
func GetHeadformHNSWRebuilder() HNSWRebuilder {
	return postgresHeadformHNSW
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// GetHeadformReader returns a HeadformReader from the PostgreSQL backend
func GetHeadformReader(ctx context.Context) (HeadformReader, error) {
	if !postgresInitialized {
		return nil, ErrNotInitialized
	}
	if postgresHeadformReader == nil {
		return nil, fmt.Errorf("PostgreSQL headform reader not registered")
	}
	return postgresHeadformReader(), nil
}

// GetHeadformWriter returns a HeadformWriter from the PostgreSQL backend
func GetHeadformWriter(ctx context.Context) (HeadformWriter, error) {
	if !postgresInitialized {
		return nil, ErrNotInitialized
	}
	if postgresHeadformWriter == nil {
		return nil, fmt.Errorf("PostgreSQL headform writer not registered")
	}
	return postgresHeadformWriter(), nil
}

// GetFitRecordWriter returns a FitRecordWriter from the PostgreSQL backend
func GetFitRecordWriter(ctx context.Context) (FitRecordWriter, error) {
	if !postgresInitialized {
		return nil, ErrNotInitialized
	}
	if postgresFitRecordWriter == nil {
		return nil, fmt.Errorf("PostgreSQL fit record writer not registered")
	}
	return postgresFitRecordWriter(), nil
}
