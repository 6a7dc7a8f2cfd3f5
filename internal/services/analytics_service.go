package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/models"
)

// AnalyticsRepository is the interface that wraps methods for analytics_data table data access
type AnalyticsRepository interface {
	// Method Create inserts a new metric record with a server-assigned timestamp.
	//
	// "record" parameter is used to create a new metric record; its ID and
	// RecordedAt fields are filled in on success.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, record *models.MetricRecord) error
	// Method GetByID retrieves a metric record by ID.
	//
	// "id" parameter is used to retrieve a metric record by ID.
	//
	// If record with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.MetricRecord, error)
	// Method List retrieves metric records with an optional category filter and pagination.
	//
	// "skip" and "limit" parameters control pagination.
	// "category" parameter is an optional equality filter; empty means no filter.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	List(ctx context.Context, skip, limit int, category string) ([]models.MetricRecord, error)
	// Method Update applies a partial update to a metric record.
	//
	// "id" parameter identifies the record to update.
	// "upd" parameter carries the fields to change; nil fields are left untouched.
	//
	// If record with such ID does not exist, the error will be returned.
	Update(ctx context.Context, id int, upd *models.UpdateMetricRequest) error
	// Method Delete deletes a metric record by ID.
	//
	// "id" parameter identifies the record to delete.
	//
	// If record with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, id int) error
	// Method BulkCreate inserts metric records in a single transaction.
	//
	// "records" parameter is the ordered sequence of records to insert.
	//
	// If some error occurs, the whole transaction is rolled back and the error
	// will be returned together with a zero count.
	BulkCreate(ctx context.Context, records []models.MetricRecord) (int, error)
}

// analyticsService implements metric record business logic
type analyticsService struct {
	repo   AnalyticsRepository
	logger *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo AnalyticsRepository, logger *zap.Logger) *analyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and stores a single metric record
func (s *analyticsService) Create(ctx context.Context, req *models.CreateMetricRequest) (*models.MetricRecord, error) {
	record, err := validateMetric(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// List retrieves metric records with an optional category filter. The limit
// is bounded to prevent unbounded scans.
func (s *analyticsService) List(ctx context.Context, skip, limit int, category string) ([]models.MetricRecord, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return s.repo.List(ctx, skip, limit, category)
}

// GetByID retrieves a metric record by ID
func (s *analyticsService) GetByID(ctx context.Context, id int) (*models.MetricRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update and returns the updated record
func (s *analyticsService) Update(ctx context.Context, id int, req *models.UpdateMetricRequest) (*models.MetricRecord, error) {
	if req.MetricName == nil && req.Value == nil && req.Category == nil {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrValidation)
	}
	if req.MetricName != nil && strings.TrimSpace(*req.MetricName) == "" {
		return nil, fmt.Errorf("%w: metric_name cannot be empty", apperrors.ErrValidation)
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		return nil, fmt.Errorf("%w: category cannot be empty", apperrors.ErrValidation)
	}

	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// Delete deletes a metric record by ID
func (s *analyticsService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// BulkCreate validates and stores an ordered sequence of metric records in a
// single transaction, returning the inserted count.
func (s *analyticsService) BulkCreate(ctx context.Context, reqs []models.CreateMetricRequest) (int, error) {
	records := make([]models.MetricRecord, 0, len(reqs))
	for i := range reqs {
		record, err := validateMetric(&reqs[i])
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, *record)
	}

	count, err := s.repo.BulkCreate(ctx, records)
	if err != nil {
		return 0, err
	}

	s.logger.Info("bulk metric insert", zap.Int("count", count))
	return count, nil
}

// validateMetric checks a create request and converts it to a record
func validateMetric(req *models.CreateMetricRequest) (*models.MetricRecord, error) {
	if strings.TrimSpace(req.MetricName) == "" {
		return nil, fmt.Errorf("%w: metric_name cannot be empty", apperrors.ErrValidation)
	}
	if req.Value == nil {
		return nil, fmt.Errorf("%w: value is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Category) == "" {
		return nil, fmt.Errorf("%w: category cannot be empty", apperrors.ErrValidation)
	}

	return &models.MetricRecord{
		MetricName: req.MetricName,
		Value:      *req.Value,
		Category:   req.Category,
	}, nil
}
