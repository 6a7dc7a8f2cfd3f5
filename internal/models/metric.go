package models

import "time"

// MetricRecord represents a single named measurement in the analytics_data table
type MetricRecord struct {
	ID         int       `json:"id"`
	MetricName string    `json:"metric_name"`
	Value      int       `json:"value"`
	Category   string    `json:"category"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CreateMetricRequest represents a request to store a new metric record.
// Value is a pointer so that a missing field can be distinguished from zero.
type CreateMetricRequest struct {
	MetricName string `json:"metric_name"`
	Value      *int   `json:"value"`
	Category   string `json:"category"`
}

// UpdateMetricRequest represents a partial update of a metric record.
// Only non-nil fields are changed.
type UpdateMetricRequest struct {
	MetricName *string `json:"metric_name,omitempty"`
	Value      *int    `json:"value,omitempty"`
	Category   *string `json:"category,omitempty"`
}

// BulkCreateResponse represents the result of a bulk insert
type BulkCreateResponse struct {
	Count int `json:"count"`
}
