package main

import (
	"fmt"
	"time"
)

// ReportDTO represents a stored analysis report in API responses.
type ReportDTO struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	MinFrequency float32   `json:"min_frequency"`
	MaxFrequency float32   `json:"max_frequency"`
	ChunksUsed   float64   `json:"chunks_used"`
	MeanHz       float32   `json:"mean_hz"`
	MedianHz     float32   `json:"median_hz"`
	LowestHz     float32   `json:"lowest_hz"`
	HighestHz    float32   `json:"highest_hz"`
	DurationMs   int       `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListReportsResponse is the response for GET /api/reports.
type ListReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
	Count   int         `json:"count"`
}

// AnalyzeResponse is the response for a successful POST /api/reports.
type AnalyzeResponse struct {
	Message string    `json:"message"`
	ID      string    `json:"id"`
	Report  ReportDTO `json:"report"`
}

// DeleteReportResponse is the response for DELETE /api/reports/{id}.
type DeleteReportResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// FetchRequest is the request body for POST /api/fetch.
type FetchRequest struct {
	// YouTubeURL is the full YouTube video URL (required).
	YouTubeURL string `json:"youtube_url"`
}

// Validate checks if the request is valid.
func (r *FetchRequest) Validate() error {
	if r.YouTubeURL == "" {
		return fmt.Errorf("youtube_url is required")
	}
	return nil
}

// FetchResponse is the response for POST /api/fetch.
type FetchResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// MetricsResponse provides server health and database metrics.
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	ReportCount  int    `json:"report_count"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
