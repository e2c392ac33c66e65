package pitch

import (
	"math"
	"testing"
)

func floatNear(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestBuildReportMedian(t *testing.T) {
	tests := []struct {
		name    string
		trimmed []float32
		want    float32
	}{
		{"odd length takes middle element", []float32{1.0, 2.0, 3.0}, 2.0},
		{"even length averages middle pair", []float32{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"single element", []float32{440.0}, 440.0},
		{"two elements", []float32{100.0, 300.0}, 200.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildReport(tt.trimmed, len(tt.trimmed)*DefaultChunkSize, DefaultChunkSize)
			if r.Median != tt.want {
				t.Errorf("Median = %v, want %v", r.Median, tt.want)
			}
		})
	}
}

func TestBuildReportMean(t *testing.T) {
	r := BuildReport([]float32{2.0, 4.0}, 2*DefaultChunkSize, DefaultChunkSize)
	if r.Mean != 3.0 {
		t.Errorf("Mean = %v, want 3.0", r.Mean)
	}
}

func TestBuildReportExtrema(t *testing.T) {
	trimmed := []float32{110.5, 220.0, 330.0, 438.2}
	r := BuildReport(trimmed, 4096, 1024)
	if r.Lowest != 110.5 {
		t.Errorf("Lowest = %v, want 110.5", r.Lowest)
	}
	if r.Highest != 438.2 {
		t.Errorf("Highest = %v, want 438.2", r.Highest)
	}
}

func TestBuildReportChunksUsed(t *testing.T) {
	// 35 trimmed values out of 44100/1024 theoretical chunks.
	trimmed := make([]float32, 35)
	for i := range trimmed {
		trimmed[i] = 440
	}
	r := BuildReport(trimmed, 44100, 1024)

	want := 35.0 / (44100.0 / 1024.0) * 100.0
	if !floatNear(r.ChunksUsed, want, 1e-9) {
		t.Errorf("ChunksUsed = %v, want %v", r.ChunksUsed, want)
	}
	if r.ChunksUsed > 100.0 {
		t.Errorf("ChunksUsed should stay below 100 when the trim removed values, got %v", r.ChunksUsed)
	}
}

func TestBuildReportFieldsFinite(t *testing.T) {
	r := BuildReport([]float32{123.0}, 1024, 1024)
	for name, v := range map[string]float64{
		"ChunksUsed": r.ChunksUsed,
		"Mean":       float64(r.Mean),
		"Median":     float64(r.Median),
		"Lowest":     float64(r.Lowest),
		"Highest":    float64(r.Highest),
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
}
