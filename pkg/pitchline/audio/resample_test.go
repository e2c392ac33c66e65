package audio

import (
	"math"
	"testing"
)

func TestResampleSameRateCopies(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out, err := Resample(in, 44100, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
	out[0] = 9
	if in[0] != 0.1 {
		t.Error("output aliases the input slice")
	}
}

func TestResampleHalvesRate(t *testing.T) {
	const srcRate, dstRate = 44100, 22050
	in := make([]float32, srcRate/2)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/srcRate))
	}

	out, err := Resample(in, srcRate, dstRate)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	want := len(in) / 2
	if diff := len(out) - want; diff < -want/20 || diff > want/20 {
		t.Errorf("got %d samples, want within 5%% of %d", len(out), want)
	}
}

func TestResampleRejectsBadRates(t *testing.T) {
	if _, err := Resample([]float32{0}, 0, 44100); err == nil {
		t.Error("expected error for zero source rate")
	}
	if _, err := Resample([]float32{0}, 44100, -1); err == nil {
		t.Error("expected error for negative target rate")
	}
}
