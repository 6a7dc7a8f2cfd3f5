package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/analyticsdash/backend/internal/models"
)

// AnalyticsService is the interface that wraps methods for metric record business logic
type AnalyticsService interface {
	// Method Create validates and stores a single metric record.
	//
	// "req" parameter contains metric_name, value and category.
	//
	// If validation fails or some error occurs, the error will be returned together with "nil" value.
	Create(ctx context.Context, req *models.CreateMetricRequest) (*models.MetricRecord, error)
	// Method List retrieves metric records with an optional category filter and pagination.
	//
	// "skip" and "limit" parameters control pagination; the limit is bounded.
	// "category" parameter is an optional equality filter; empty means no filter.
	//
	// If some error occurs, the error will be returned together with "nil" value.
	List(ctx context.Context, skip, limit int, category string) ([]models.MetricRecord, error)
	// Method GetByID retrieves a metric record by ID.
	//
	// "id" parameter identifies the record.
	//
	// If record with such ID does not exist, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.MetricRecord, error)
	// Method Update applies a partial update and returns the updated record.
	//
	// "id" parameter identifies the record.
	// "req" parameter carries the fields to change; nil fields are left untouched.
	//
	// If record with such ID does not exist or validation fails, the error will be returned together with "nil" value.
	Update(ctx context.Context, id int, req *models.UpdateMetricRequest) (*models.MetricRecord, error)
	// Method Delete deletes a metric record by ID.
	//
	// "id" parameter identifies the record.
	//
	// If record with such ID does not exist, the error will be returned.
	Delete(ctx context.Context, id int) error
	// Method BulkCreate stores an ordered sequence of metric records in a single transaction.
	//
	// "reqs" parameter is the ordered sequence of create requests.
	//
	// If validation fails for any record or some error occurs, nothing is
	// inserted and the error will be returned together with a zero count.
	BulkCreate(ctx context.Context, reqs []models.CreateMetricRequest) (int, error)
}

// AnalyticsHandler handles metric record HTTP requests
type AnalyticsHandler struct {
	BaseHandler
	analyticsService AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      BaseHandler{logger: logger},
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers all analytics handler routes.
// Reads and creates require an active user; update and delete are admin only.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, requireUser, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/analytics/data", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/", h.Create)
			r.Post("/bulk", h.BulkCreate)
			r.Get("/", h.List)
			r.Get("/{id}", h.GetByID)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles POST /analytics/data
// @Summary Store a metric record
// @Description Store a new metric record with a server-assigned timestamp.
// @Tags analytics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateMetricRequest true "Metric record"
// @Success 200 {object} models.MetricRecord
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /analytics/data [post]
func (h *AnalyticsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.analyticsService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create metric record", zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// BulkCreate handles POST /analytics/data/bulk
// @Summary Store multiple metric records
// @Description Store an ordered sequence of metric records in a single transaction; returns the inserted count.
// @Tags analytics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body []models.CreateMetricRequest true "Metric records"
// @Success 200 {object} models.BulkCreateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /analytics/data/bulk [post]
func (h *AnalyticsHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var reqs []models.CreateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.analyticsService.BulkCreate(r.Context(), reqs)
	if err != nil {
		h.logger.Error("failed to bulk create metric records", zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.BulkCreateResponse{Count: count})
}

// List handles GET /analytics/data
// @Summary List metric records
// @Description Retrieve metric records, optionally filtered by category, with offset/limit pagination.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param skip query int false "Pagination offset (default 0)"
// @Param limit query int false "Page size (default 100, capped)"
// @Param category query string false "Category equality filter"
// @Success 200 {array} models.MetricRecord
// @Failure 401 {object} map[string]string "Authentication required"
// @Router /analytics/data [get]
func (h *AnalyticsHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)
	category := r.URL.Query().Get("category")

	records, err := h.analyticsService.List(r.Context(), skip, limit, category)
	if err != nil {
		h.logger.Error("failed to list metric records", zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	// Return an empty array rather than null when there are no records
	if records == nil {
		records = []models.MetricRecord{}
	}

	h.respondJSON(w, http.StatusOK, records)
}

// GetByID handles GET /analytics/data/{id}
// @Summary Get a metric record
// @Description Get a specific metric record by ID.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Record ID"
// @Success 200 {object} models.MetricRecord
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /analytics/data/{id} [get]
func (h *AnalyticsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := h.analyticsService.GetByID(r.Context(), id)
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// Update handles PUT /analytics/data/{id}
// @Summary Update a metric record
// @Description Partially update a metric record; unspecified fields are left untouched. Admin only.
// @Tags analytics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Record ID"
// @Param request body models.UpdateMetricRequest true "Fields to update"
// @Success 200 {object} models.MetricRecord
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Admin privileges required"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /analytics/data/{id} [put]
func (h *AnalyticsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	var req models.UpdateMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.analyticsService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update metric record", zap.Int("id", id), zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /analytics/data/{id}
// @Summary Delete a metric record
// @Description Delete a metric record by ID. Admin only.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Record ID"
// @Success 200 {object} map[string]int "Deleted record ID"
// @Failure 403 {object} map[string]string "Admin privileges required"
// @Failure 404 {object} map[string]string "Record not found"
// @Router /analytics/data/{id} [delete]
func (h *AnalyticsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.analyticsService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete metric record", zap.Int("id", id), zap.Error(err))
		h.respondAppError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"id": id})
}
