package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/models"
)

// analyticsRepository implements metric record data access over the analytics_data table
type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *sql.DB) *analyticsRepository {
	return &analyticsRepository{
		db: db,
	}
}

// Create inserts a new metric record. The recorded_at timestamp is assigned
// by the server, never taken from the client.
func (r *analyticsRepository) Create(ctx context.Context, record *models.MetricRecord) error {
	record.RecordedAt = time.Now().UTC()

	query := `
		INSERT INTO analytics_data (metric_name, value, category, recorded_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, record.MetricName, record.Value, record.Category, record.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to create metric record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = int(id)
	return nil
}

// GetByID retrieves a metric record by ID
func (r *analyticsRepository) GetByID(ctx context.Context, id int) (*models.MetricRecord, error) {
	query := `
		SELECT id, metric_name, value, category, recorded_at
		FROM analytics_data
		WHERE id = ?
		LIMIT 1
	`

	record := &models.MetricRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.MetricName,
		&record.Value,
		&record.Category,
		&record.RecordedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: metric record %d", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metric record: %w", err)
	}

	return record, nil
}

// List retrieves metric records with an optional category filter and
// offset/limit pagination
func (r *analyticsRepository) List(ctx context.Context, skip, limit int, category string) ([]models.MetricRecord, error) {
	var whereClause string
	var args []any

	if category != "" {
		whereClause = `WHERE category = ?`
		args = append(args, category)
	}

	query := fmt.Sprintf(`
		SELECT id, metric_name, value, category, recorded_at
		FROM analytics_data
		%s
		ORDER BY id
		LIMIT ? OFFSET ?
	`, whereClause)

	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric records: %w", err)
	}
	defer rows.Close()

	var records []models.MetricRecord
	for rows.Next() {
		var record models.MetricRecord
		if err := rows.Scan(&record.ID, &record.MetricName, &record.Value, &record.Category, &record.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metric record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Update applies a partial update to a metric record. Only non-nil fields of
// upd are changed; unspecified fields are left untouched.
func (r *analyticsRepository) Update(ctx context.Context, id int, upd *models.UpdateMetricRequest) error {
	var setParts []string
	var args []any

	if upd.MetricName != nil {
		setParts = append(setParts, "metric_name = ?")
		args = append(args, *upd.MetricName)
	}
	if upd.Value != nil {
		setParts = append(setParts, "value = ?")
		args = append(args, *upd.Value)
	}
	if upd.Category != nil {
		setParts = append(setParts, "category = ?")
		args = append(args, *upd.Category)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}

	query := fmt.Sprintf(`
		UPDATE analytics_data
		SET %s
		WHERE id = ?
	`, strings.Join(setParts, ", "))

	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update metric record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: metric record %d", apperrors.ErrNotFound, id)
	}

	return nil
}

// Delete deletes a metric record by ID
func (r *analyticsRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM analytics_data WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete metric record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: metric record %d", apperrors.ErrNotFound, id)
	}

	return nil
}

// BulkCreate inserts an ordered sequence of metric records in a single
// transaction and returns the inserted count. An empty input inserts nothing.
func (r *analyticsRepository) BulkCreate(ctx context.Context, records []models.MetricRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	recordedAt := time.Now().UTC()

	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*4)
	for i := range records {
		records[i].RecordedAt = recordedAt
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		args = append(args, records[i].MetricName, records[i].Value, records[i].Category, recordedAt)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO analytics_data (metric_name, value, category, recorded_at)
		VALUES %s
	`, strings.Join(placeholders, ","))

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to bulk insert metric records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(records), nil
}
