package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/mask-fitter/internal/database"
)

const headformColumns = `category, bizygomatic_breadth, menton_sellion, face_width, face_length,
		       face_depth, vertex_count, source_file, updated_at`

// HeadformRepository provides PostgreSQL-backed reference headform storage
// with an optional in-memory HNSW index for nearest-shape lookups.
type HeadformRepository struct {
	pool        *Pool
	hnswIndex   *database.HeadformIndex
	hnswEnabled bool
	hnswMu      sync.RWMutex
}

// NewHeadformRepository creates a new PostgreSQL headform repository.
func NewHeadformRepository(pool *Pool) *HeadformRepository {
	return &HeadformRepository{pool: pool}
}

// Get retrieves a headform by category, returns nil if not found.
func (r *HeadformRepository) Get(ctx context.Context, category string) (*database.StoredHeadform, error) {
	query := `SELECT ` + headformColumns + ` FROM headform_references WHERE category = $1`

	h, err := scanHeadform(r.pool.QueryRow(ctx, query, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get headform: %w", err)
	}
	return &h, nil
}

// List returns all headforms ordered by category.
func (r *HeadformRepository) List(ctx context.Context) ([]database.StoredHeadform, error) {
	query := `SELECT ` + headformColumns + ` FROM headform_references ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query headforms: %w", err)
	}
	defer rows.Close()

	return scanHeadforms(rows)
}

// Count returns the number of stored headforms.
func (r *HeadformRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM headform_references").Scan(&count); err != nil {
		return 0, fmt.Errorf("count headforms: %w", err)
	}
	return count, nil
}

// FindNearest returns the headforms closest to the given shape.
// Uses the in-memory HNSW index if enabled, otherwise the pgvector L2 operator.
func (r *HeadformRepository) FindNearest(ctx context.Context, bizygomatic, mentonSellion float64, limit int) ([]database.StoredHeadform, []float64, error) {
	r.hnswMu.RLock()
	idx := r.hnswIndex
	enabled := r.hnswEnabled && idx != nil
	r.hnswMu.RUnlock()

	if enabled && idx.Count() > 0 {
		results, distances, err := idx.Nearest(bizygomatic, mentonSellion, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("HNSW search: %w", err)
		}
		return results, distances, nil
	}

	return r.findNearestPostgres(ctx, bizygomatic, mentonSellion, limit)
}

func (r *HeadformRepository) findNearestPostgres(ctx context.Context, bizygomatic, mentonSellion float64, limit int) ([]database.StoredHeadform, []float64, error) {
	query := `
		SELECT ` + headformColumns + `,
		       SQRT(POWER(bizygomatic_breadth - $1, 2) + POWER(menton_sellion - $2, 2)) AS distance
		FROM headform_references
		ORDER BY shape <-> $3::vector
		LIMIT $4
	`

	shape := pgvector.NewVector([]float32{float32(bizygomatic), float32(mentonSellion)})
	rows, err := r.pool.Query(ctx, query, bizygomatic, mentonSellion, shape, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query nearest headforms: %w", err)
	}
	defer rows.Close()

	var results []database.StoredHeadform
	var distances []float64
	for rows.Next() {
		var h database.StoredHeadform
		var distance float64
		if err := rows.Scan(
			&h.Category, &h.BizygomaticBreadth, &h.MentonSellion, &h.FaceWidth, &h.FaceLength,
			&h.FaceDepth, &h.VertexCount, &h.SourceFile, &h.UpdatedAt, &distance,
		); err != nil {
			return nil, nil, fmt.Errorf("scan headform: %w", err)
		}
		results = append(results, h)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate headforms: %w", err)
	}
	return results, distances, nil
}

// Save stores a headform, replacing the existing row for its category.
func (r *HeadformRepository) Save(ctx context.Context, h database.StoredHeadform) error {
	query := `
		INSERT INTO headform_references
			(category, bizygomatic_breadth, menton_sellion, face_width, face_length,
			 face_depth, vertex_count, source_file, shape, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (category) DO UPDATE SET
			bizygomatic_breadth = EXCLUDED.bizygomatic_breadth,
			menton_sellion = EXCLUDED.menton_sellion,
			face_width = EXCLUDED.face_width,
			face_length = EXCLUDED.face_length,
			face_depth = EXCLUDED.face_depth,
			vertex_count = EXCLUDED.vertex_count,
			source_file = EXCLUDED.source_file,
			shape = EXCLUDED.shape,
			updated_at = NOW()
	`

	shape := pgvector.NewVector(h.Shape())
	_, err := r.pool.Exec(ctx, query,
		h.Category, h.BizygomaticBreadth, h.MentonSellion, h.FaceWidth, h.FaceLength,
		h.FaceDepth, h.VertexCount, h.SourceFile, shape,
	)
	if err != nil {
		return fmt.Errorf("save headform: %w", err)
	}

	r.hnswMu.RLock()
	if r.hnswEnabled && r.hnswIndex != nil {
		r.hnswIndex.Add(h)
	}
	r.hnswMu.RUnlock()
	return nil
}

// Delete removes the headform for a category.
func (r *HeadformRepository) Delete(ctx context.Context, category string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM headform_references WHERE category = $1", category); err != nil {
		return fmt.Errorf("delete headform: %w", err)
	}

	r.hnswMu.RLock()
	if r.hnswEnabled && r.hnswIndex != nil {
		r.hnswIndex.Delete(category)
	}
	r.hnswMu.RUnlock()
	return nil
}

// EnableHNSW builds the in-memory index from the stored headforms.
// This should be called once at startup.
func (r *HeadformRepository) EnableHNSW(ctx context.Context) error {
	headforms, err := r.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load headforms: %w", err)
	}

	idx := database.NewHeadformIndex()
	idx.Build(headforms)

	r.hnswMu.Lock()
	r.hnswIndex = idx
	r.hnswEnabled = true
	r.hnswMu.Unlock()
	return nil
}

// IsHNSWEnabled returns whether the in-memory HNSW index is enabled.
func (r *HeadformRepository) IsHNSWEnabled() bool {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	return r.hnswEnabled && r.hnswIndex != nil
}

// HNSWCount returns the number of headforms in the HNSW index.
func (r *HeadformRepository) HNSWCount() int {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return 0
	}
	return r.hnswIndex.Count()
}

// RebuildHNSW rebuilds the HNSW index from PostgreSQL data.
func (r *HeadformRepository) RebuildHNSW(ctx context.Context) error {
	return r.EnableHNSW(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHeadform(row rowScanner) (database.StoredHeadform, error) {
	var h database.StoredHeadform
	err := row.Scan(
		&h.Category, &h.BizygomaticBreadth, &h.MentonSellion, &h.FaceWidth, &h.FaceLength,
		&h.FaceDepth, &h.VertexCount, &h.SourceFile, &h.UpdatedAt,
	)
	return h, err
}

func scanHeadforms(rows *sql.Rows) ([]database.StoredHeadform, error) {
	var results []database.StoredHeadform
	for rows.Next() {
		h, err := scanHeadform(rows)
		if err != nil {
			return nil, fmt.Errorf("scan headform: %w", err)
		}
		results = append(results, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate headforms: %w", err)
	}
	return results, nil
}
