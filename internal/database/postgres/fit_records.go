package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kozaktomas/mask-fitter/internal/database"
)

const fitColumns = `id, subject_name, date_of_birth, bizygomatic_breadth, menton_sellion,
		       face_width, face_length, face_depth, category, confidence, matched,
		       recommendations, inventory_fallback, nearest_reference, created_at`

// FitRecordRepository provides PostgreSQL-backed fit record storage.
type FitRecordRepository struct {
	pool *Pool
}

// NewFitRecordRepository creates a new PostgreSQL fit record repository.
func NewFitRecordRepository(pool *Pool) *FitRecordRepository {
	return &FitRecordRepository{pool: pool}
}

// SaveFit stores a fit record. Records are immutable once written.
func (r *FitRecordRepository) SaveFit(ctx context.Context, rec database.FitRecord) error {
	query := `
		INSERT INTO fit_records (` + fitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	m := rec.Measurements
	recommendations := rec.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.SubjectName, rec.DateOfBirth,
		m.BizygomaticBreadth, m.MentonSellion, m.FaceWidth, m.FaceLength, m.FaceDepth,
		rec.Category, rec.Confidence, rec.Matched,
		pq.Array(recommendations), rec.InventoryFallback, rec.NearestReference, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save fit record: %w", err)
	}
	return nil
}

// GetFit retrieves a fit record by ID, returns nil if not found.
func (r *FitRecordRepository) GetFit(ctx context.Context, id string) (*database.FitRecord, error) {
	query := `SELECT ` + fitColumns + ` FROM fit_records WHERE id = $1`

	rec, err := scanFitRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get fit record: %w", err)
	}
	return &rec, nil
}

// ListFits returns the most recent fit records, newest first.
func (r *FitRecordRepository) ListFits(ctx context.Context, limit int) ([]database.FitRecord, error) {
	if limit <= 0 {
		limit = database.DefaultFitListLimit
	}
	query := `SELECT ` + fitColumns + ` FROM fit_records ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query fit records: %w", err)
	}
	defer rows.Close()

	var results []database.FitRecord
	for rows.Next() {
		rec, err := scanFitRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fit record: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fit records: %w", err)
	}
	return results, nil
}

func scanFitRecord(row rowScanner) (database.FitRecord, error) {
	var rec database.FitRecord
	var recommendations pq.StringArray
	m := &rec.Measurements
	err := row.Scan(
		&rec.ID, &rec.SubjectName, &rec.DateOfBirth,
		&m.BizygomaticBreadth, &m.MentonSellion, &m.FaceWidth, &m.FaceLength, &m.FaceDepth,
		&rec.Category, &rec.Confidence, &rec.Matched,
		&recommendations, &rec.InventoryFallback, &rec.NearestReference, &rec.CreatedAt,
	)
	rec.Recommendations = []string(recommendations)
	return rec, err
}
