package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/apperrors"
	"github.com/analyticsdash/backend/internal/models"
)

func intPtr(i int) *int { return &i }

// mockAnalyticsRepository is a mock implementation of AnalyticsRepository
type mockAnalyticsRepository struct {
	record        *models.MetricRecord
	records       []models.MetricRecord
	createErr     error
	getByIDErr    error
	listErr       error
	updateErr     error
	deleteErr     error
	bulkCreateErr error

	lastUpdate   *models.UpdateMetricRequest
	lastSkip     int
	lastLimit    int
	lastCategory string
	bulkInserted []models.MetricRecord
}

func (m *mockAnalyticsRepository) Create(ctx context.Context, record *models.MetricRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = 1
	record.RecordedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return nil
}

func (m *mockAnalyticsRepository) GetByID(ctx context.Context, id int) (*models.MetricRecord, error) {
	if m.getByIDErr != nil {
		return nil, m.getByIDErr
	}
	return m.record, nil
}

func (m *mockAnalyticsRepository) List(ctx context.Context, skip, limit int, category string) ([]models.MetricRecord, error) {
	m.lastSkip = skip
	m.lastLimit = limit
	m.lastCategory = category
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockAnalyticsRepository) Update(ctx context.Context, id int, upd *models.UpdateMetricRequest) error {
	m.lastUpdate = upd
	return m.updateErr
}

func (m *mockAnalyticsRepository) Delete(ctx context.Context, id int) error {
	return m.deleteErr
}

func (m *mockAnalyticsRepository) BulkCreate(ctx context.Context, records []models.MetricRecord) (int, error) {
	if m.bulkCreateErr != nil {
		return 0, m.bulkCreateErr
	}
	m.bulkInserted = records
	return len(records), nil
}

func TestNewAnalyticsService(t *testing.T) {
	logger := zap.NewNop()
	repo := &mockAnalyticsRepository{}

	svc := NewAnalyticsService(repo, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, logger, svc.logger)
}

func TestAnalyticsService_Create(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name          string
		req           *models.CreateMetricRequest
		repo          *mockAnalyticsRepository
		expectedError error
	}{
		{
			name: "success",
			req: &models.CreateMetricRequest{
				MetricName: "page_views",
				Value:      intPtr(42),
				Category:   "web",
			},
			repo: &mockAnalyticsRepository{},
		},
		{
			name: "zero value is valid",
			req: &models.CreateMetricRequest{
				MetricName: "errors",
				Value:      intPtr(0),
				Category:   "ops",
			},
			repo: &mockAnalyticsRepository{},
		},
		{
			name: "empty metric name",
			req: &models.CreateMetricRequest{
				MetricName: "   ",
				Value:      intPtr(42),
				Category:   "web",
			},
			repo:          &mockAnalyticsRepository{},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "missing value",
			req: &models.CreateMetricRequest{
				MetricName: "page_views",
				Category:   "web",
			},
			repo:          &mockAnalyticsRepository{},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "empty category",
			req: &models.CreateMetricRequest{
				MetricName: "page_views",
				Value:      intPtr(42),
				Category:   "",
			},
			repo:          &mockAnalyticsRepository{},
			expectedError: apperrors.ErrValidation,
		},
		{
			name: "repository error",
			req: &models.CreateMetricRequest{
				MetricName: "page_views",
				Value:      intPtr(42),
				Category:   "web",
			},
			repo:          &mockAnalyticsRepository{createErr: errors.New("database error")},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAnalyticsService(tt.repo, logger)

			record, err := svc.Create(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, record)
				if errors.Is(tt.expectedError, apperrors.ErrValidation) {
					assert.True(t, errors.Is(err, apperrors.ErrValidation))
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, record)
			assert.Equal(t, 1, record.ID)
			assert.Equal(t, tt.req.MetricName, record.MetricName)
			assert.Equal(t, *tt.req.Value, record.Value)
			assert.False(t, record.RecordedAt.IsZero())
		})
	}
}

func TestAnalyticsService_List(t *testing.T) {
	logger := zap.NewNop()

	stored := []models.MetricRecord{
		{ID: 1, MetricName: "page_views", Value: 42, Category: "web"},
	}

	t.Run("success", func(t *testing.T) {
		repo := &mockAnalyticsRepository{records: stored}
		svc := NewAnalyticsService(repo, logger)

		records, err := svc.List(context.Background(), 0, 10, "web")
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "web", repo.lastCategory)
	})

	t.Run("zero limit falls back to default", func(t *testing.T) {
		repo := &mockAnalyticsRepository{records: stored}
		svc := NewAnalyticsService(repo, logger)

		_, err := svc.List(context.Background(), 0, 0, "")
		require.NoError(t, err)
		assert.Equal(t, defaultPageLimit, repo.lastLimit)
	})

	t.Run("limit is capped", func(t *testing.T) {
		repo := &mockAnalyticsRepository{records: stored}
		svc := NewAnalyticsService(repo, logger)

		_, err := svc.List(context.Background(), 0, 9999, "")
		require.NoError(t, err)
		assert.Equal(t, maxPageLimit, repo.lastLimit)
	})

	t.Run("negative skip is clamped", func(t *testing.T) {
		repo := &mockAnalyticsRepository{records: stored}
		svc := NewAnalyticsService(repo, logger)

		_, err := svc.List(context.Background(), -1, 10, "")
		require.NoError(t, err)
		assert.Equal(t, 0, repo.lastSkip)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockAnalyticsRepository{listErr: errors.New("database error")}
		svc := NewAnalyticsService(repo, logger)

		records, err := svc.List(context.Background(), 0, 10, "")
		assert.Error(t, err)
		assert.Nil(t, records)
	})
}

func TestAnalyticsService_Update(t *testing.T) {
	logger := zap.NewNop()

	updated := &models.MetricRecord{
		ID:         1,
		MetricName: "page_views",
		Value:      100,
		Category:   "web",
	}

	tests := []struct {
		name          string
		req           *models.UpdateMetricRequest
		repo          *mockAnalyticsRepository
		expectedError error
	}{
		{
			name: "success",
			req:  &models.UpdateMetricRequest{Value: intPtr(100)},
			repo: &mockAnalyticsRepository{record: updated},
		},
		{
			name:          "no fields to update",
			req:           &models.UpdateMetricRequest{},
			repo:          &mockAnalyticsRepository{record: updated},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "empty metric name rejected",
			req:           &models.UpdateMetricRequest{MetricName: stringPtr(" ")},
			repo:          &mockAnalyticsRepository{record: updated},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "empty category rejected",
			req:           &models.UpdateMetricRequest{Category: stringPtr("")},
			repo:          &mockAnalyticsRepository{record: updated},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "record not found",
			req:           &models.UpdateMetricRequest{Value: intPtr(100)},
			repo:          &mockAnalyticsRepository{updateErr: apperrors.ErrNotFound},
			expectedError: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAnalyticsService(tt.repo, logger)

			record, err := svc.Update(context.Background(), 1, tt.req)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, record)
				if errors.Is(tt.expectedError, apperrors.ErrValidation) {
					assert.True(t, errors.Is(err, apperrors.ErrValidation))
				}
				if errors.Is(tt.expectedError, apperrors.ErrNotFound) {
					assert.True(t, errors.Is(err, apperrors.ErrNotFound))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, updated, record)
		})
	}
}

func TestAnalyticsService_Delete(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		svc := NewAnalyticsService(&mockAnalyticsRepository{}, logger)
		assert.NoError(t, svc.Delete(context.Background(), 1))
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewAnalyticsService(&mockAnalyticsRepository{deleteErr: apperrors.ErrNotFound}, logger)
		err := svc.Delete(context.Background(), 999)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

func TestAnalyticsService_BulkCreate(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		repo := &mockAnalyticsRepository{}
		svc := NewAnalyticsService(repo, logger)

		reqs := []models.CreateMetricRequest{
			{MetricName: "page_views", Value: intPtr(42), Category: "web"},
			{MetricName: "signups", Value: intPtr(7), Category: "growth"},
		}

		count, err := svc.BulkCreate(context.Background(), reqs)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, repo.bulkInserted, 2)
		assert.Equal(t, "page_views", repo.bulkInserted[0].MetricName)
		assert.Equal(t, "signups", repo.bulkInserted[1].MetricName)
	})

	t.Run("empty input", func(t *testing.T) {
		repo := &mockAnalyticsRepository{}
		svc := NewAnalyticsService(repo, logger)

		count, err := svc.BulkCreate(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("validation error names the offending record", func(t *testing.T) {
		repo := &mockAnalyticsRepository{}
		svc := NewAnalyticsService(repo, logger)

		reqs := []models.CreateMetricRequest{
			{MetricName: "page_views", Value: intPtr(42), Category: "web"},
			{MetricName: "", Value: intPtr(7), Category: "growth"},
		}

		count, err := svc.BulkCreate(context.Background(), reqs)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Contains(t, err.Error(), "record 1")
		assert.Equal(t, 0, count)
		// Nothing reaches the store when any record fails validation
		assert.Nil(t, repo.bulkInserted)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockAnalyticsRepository{bulkCreateErr: errors.New("database error")}
		svc := NewAnalyticsService(repo, logger)

		reqs := []models.CreateMetricRequest{
			{MetricName: "page_views", Value: intPtr(42), Category: "web"},
		}

		count, err := svc.BulkCreate(context.Background(), reqs)
		assert.Error(t, err)
		assert.Equal(t, 0, count)
	})
}
