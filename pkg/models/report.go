// Package models holds the domain types shared between the pitchline
// library facade and its storage backends.
package models

import "time"

// ReportRecord is a persisted pitch analysis result: the report fields
// plus enough provenance (source, bounds, duration) to interpret them
// later.
type ReportRecord struct {
	ID           string
	Source       string // file path or URL the audio came from
	Title        string
	MinFrequency float32 // Hz, acceptance window lower bound
	MaxFrequency float32 // Hz, acceptance window upper bound
	ChunksUsed   float64 // percentage of theoretical chunks kept
	MeanHz       float32
	MedianHz     float32
	LowestHz     float32
	HighestHz    float32
	DurationMs   int
	CreatedAt    time.Time
}
