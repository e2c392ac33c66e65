package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pitchline/pitchline/pkg/logger"
	"github.com/pitchline/pitchline/pkg/models"
	"github.com/pitchline/pitchline/pkg/pitchline"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service pitchline.Service
	config  *ServerConfig
	log     pitchline.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(service pitchline.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func recordToDTO(rec *models.ReportRecord) ReportDTO {
	return ReportDTO{
		ID:           rec.ID,
		Source:       rec.Source,
		Title:        rec.Title,
		MinFrequency: rec.MinFrequency,
		MaxFrequency: rec.MaxFrequency,
		ChunksUsed:   rec.ChunksUsed,
		MeanHz:       rec.MeanHz,
		MedianHz:     rec.MedianHz,
		LowestHz:     rec.LowestHz,
		HighestHz:    rec.HighestHz,
		DurationMs:   rec.DurationMs,
		CreatedAt:    rec.CreatedAt,
	}
}

// saveUpload copies the multipart "audio" file into the temp dir and
// returns its path. The caller removes the file when done.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.log.Errorf("Failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return "", false
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), header.Filename))
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return "", false
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(tempFile)
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return "", false
	}
	return tempFile, true
}

// parseBound reads an optional float form field, using def when absent.
func parseBound(r *http.Request, field string, def float32) (float32, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, raw)
	}
	return float32(v), nil
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "pitchline API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":       "GET /health",
			"metrics":      "GET /api/health/metrics",
			"reports":      "GET /api/reports",
			"analyzeFile":  "POST /api/reports",
			"getReport":    "GET /api/reports/{id}",
			"deleteReport": "DELETE /api/reports/{id}",
			"compose":      "POST /api/compose",
			"fetch":        "POST /api/fetch",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListReports()
	if err != nil {
		s.log.Errorf("Failed to get report count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		ReportCount:  len(reports),
	})
}

// handleListReports handles GET /api/reports
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListReports()
	if err != nil {
		s.log.Errorf("Failed to list reports: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}

	dtos := make([]ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = recordToDTO(&reports[i])
	}

	s.respondJSON(w, http.StatusOK, ListReportsResponse{
		Reports: dtos,
		Count:   len(dtos),
	})
}

// handleAnalyzeFile handles POST /api/reports (multipart file upload)
func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	// Parse multipart form (max 100MB)
	if err := r.ParseMultipartForm(100 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	title := r.FormValue("title")
	minFreq, err := parseBound(r, "min_frequency", pitchline.DefaultMinFrequency)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxFreq, err := parseBound(r, "max_frequency", pitchline.DefaultMaxFrequency)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tempFile, ok := s.saveUpload(w, r, "upload")
	if !ok {
		return
	}
	defer os.Remove(tempFile)

	s.log.Infof("Analyzing uploaded file: %s", tempFile)
	id, _, err := s.service.AnalyzeFile(ctx, tempFile, title, pitchline.AnalyzeOptions{
		MinFrequency: minFreq,
		MaxFrequency: maxFreq,
	})
	if err != nil {
		s.log.Errorf("Failed to analyze file: %v", err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to analyze file: %v", err))
		return
	}

	rec, err := s.service.GetReport(id)
	if err != nil {
		s.log.Errorf("Failed to load saved report %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to load saved report")
		return
	}

	s.log.Infof("Successfully analyzed upload, report %s", id)
	s.respondJSON(w, http.StatusCreated, AnalyzeResponse{
		Message: "Analysis complete",
		ID:      id,
		Report:  recordToDTO(rec),
	})
}

// handleGetReport handles GET /api/reports/{id}
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetReport(id)
	if err != nil {
		s.log.Warnf("Report not found: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Report with ID %s not found", id))
		return
	}

	s.respondJSON(w, http.StatusOK, recordToDTO(rec))
}

// handleDeleteReport handles DELETE /api/reports/{id}
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.service.GetReport(id)
	if err != nil {
		s.log.Warnf("Report not found for deletion: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Report with ID %s not found", id))
		return
	}

	if err := s.service.DeleteReport(id); err != nil {
		s.log.Errorf("Failed to delete report %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	s.log.Infof("Deleted report: %q (ID: %s)", rec.Title, id)
	s.respondJSON(w, http.StatusOK, DeleteReportResponse{
		Message: "Report deleted successfully",
		ID:      id,
	})
}

// handleComposeFile handles POST /api/compose (multipart file upload)
func (s *Server) handleComposeFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	// Parse multipart form (max 100MB)
	if err := r.ParseMultipartForm(100 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	opts := pitchline.ComposeOptions{
		Remux: r.FormValue("remux") == "true",
	}
	if raw := r.FormValue("quality"); raw != "" {
		q, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid quality: %q", raw))
			return
		}
		opts.TargetQuality = float32(q)
	}
	if raw := r.FormValue("sample_rate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid sample_rate: %q", raw))
			return
		}
		opts.OutputSampleRate = rate
	}

	tempFile, ok := s.saveUpload(w, r, "compose")
	if !ok {
		return
	}
	defer os.Remove(tempFile)

	src, err := os.ReadFile(tempFile)
	if err != nil {
		s.log.Errorf("Failed to read upload: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	s.log.Infof("Composing uploaded file: %s", tempFile)
	out, err := s.service.Compose(ctx, src, opts)
	if err != nil {
		s.log.Errorf("Failed to compose: %v", err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to compose: %v", err))
		return
	}

	s.log.Infof("Compose complete: %d bytes", len(out))
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="composed.wav"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.log.Errorf("Failed to write response: %v", err)
	}
}

// handleFetchYouTube handles POST /api/fetch
func (s *Server) handleFetchYouTube(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Infof("Fetching audio from YouTube URL: %s", req.YouTubeURL)
	path, err := s.service.FetchYouTubeAudio(ctx, req.YouTubeURL)
	if err != nil {
		s.log.Errorf("Failed to fetch YouTube audio: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch YouTube audio: %v", err))
		return
	}

	s.log.Infof("Fetched YouTube audio to %s", path)
	s.respondJSON(w, http.StatusOK, FetchResponse{
		Message: "Audio fetched successfully",
		Path:    path,
	})
}

// handleReports routes requests to /api/reports
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListReports(w, r)
	case http.MethodPost:
		s.handleAnalyzeFile(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleReport routes requests to /api/reports/{id}
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/reports/"):]
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Report ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetReport(w, r, id)
	case http.MethodDelete:
		s.handleDeleteReport(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCompose routes requests to /api/compose
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleComposeFile(w, r)
}

// handleFetch routes requests to /api/fetch
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleFetchYouTube(w, r)
}
