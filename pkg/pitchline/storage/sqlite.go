// Package storage persists pitch analysis reports in SQLite through
// gorm, giving callers a queryable history of past analysis runs.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pitchline/pitchline/pkg/models"
	"github.com/pitchline/pitchline/pkg/utils"
)

// DefaultDBFile is used when no path is configured.
const DefaultDBFile = "pitchline.sqlite3"

const errDBClientNil = "db client is nil"

// DBClient wraps the gorm handle and the raw pool it manages.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Report is the persisted form of a pitch analysis result.
type Report struct {
	ID           string  `gorm:"primaryKey;type:varchar(36)"`
	Source       string  `gorm:"index:idx_report_source" json:"source"`
	Title        string  `json:"title"`
	MinFrequency float32 `json:"min_frequency"`
	MaxFrequency float32 `json:"max_frequency"`
	ChunksUsed   float64 `json:"chunks_used"`
	MeanHz       float32 `json:"mean_hz"`
	MedianHz     float32 `json:"median_hz"`
	LowestHz     float32 `json:"lowest_hz"`
	HighestHz    float32 `json:"highest_hz"`
	DurationMs   int     `json:"duration_ms"`
	CreatedAt    time.Time
}

// NewDBClient opens (or creates) the database at the PITCHLINE_DB_PATH
// environment variable, falling back to DefaultDBFile.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("PITCHLINE_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

// NewDBClientWithPath opens (or creates) the database at dbPath and
// migrates the report schema.
func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Report{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

// Close releases the connection pool.
func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveReport stores a report record, assigning it a fresh ID, and
// returns that ID.
func (c *DBClient) SaveReport(rec models.ReportRecord) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	row := Report{
		ID:           utils.GenerateUUID(),
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
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return "", fmt.Errorf("creating report row: %w", err)
	}
	return row.ID, nil
}

// GetReportByID fetches a single report.
func (c *DBClient) GetReportByID(id string) (*models.ReportRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var row Report
	if err := c.DB.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report not found: %s", id)
		}
		return nil, fmt.Errorf("querying report: %w", err)
	}
	rec := rowToRecord(row)
	return &rec, nil
}

// ListReports returns all stored reports, newest first.
func (c *DBClient) ListReports() ([]models.ReportRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rows []Report
	if err := c.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	records := make([]models.ReportRecord, len(rows))
	for i, row := range rows {
		records[i] = rowToRecord(row)
	}
	return records, nil
}

// DeleteReportByID removes a report.
func (c *DBClient) DeleteReportByID(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	res := c.DB.Delete(&Report{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting report: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report not found: %s", id)
	}
	return nil
}

func rowToRecord(row Report) models.ReportRecord {
	return models.ReportRecord{
		ID:           row.ID,
		Source:       row.Source,
		Title:        row.Title,
		MinFrequency: row.MinFrequency,
		MaxFrequency: row.MaxFrequency,
		ChunksUsed:   row.ChunksUsed,
		MeanHz:       row.MeanHz,
		MedianHz:     row.MedianHz,
		LowestHz:     row.LowestHz,
		HighestHz:    row.HighestHz,
		DurationMs:   row.DurationMs,
		CreatedAt:    row.CreatedAt,
	}
}
