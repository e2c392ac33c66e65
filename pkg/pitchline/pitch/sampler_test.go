package pitch

import (
	"testing"
)

// recordingEstimator counts every window it is asked about and answers
// from a scripted list.
type recordingEstimator struct {
	windows    [][]float32
	rates      []int
	powerThrs  []float64
	clarityThs []float64
	script     []bool // per attempt: produce an estimate or decline
	freq       float32
}

func (r *recordingEstimator) Estimate(window []float32, sampleRate int, powerThreshold, clarityThreshold float64) (Candidate, bool) {
	attempt := len(r.windows)
	r.windows = append(r.windows, window)
	r.rates = append(r.rates, sampleRate)
	r.powerThrs = append(r.powerThrs, powerThreshold)
	r.clarityThs = append(r.clarityThs, clarityThreshold)

	if attempt < len(r.script) && !r.script[attempt] {
		return Candidate{}, false
	}
	return Candidate{Frequency: r.freq + float32(attempt), Clarity: 0.8}, true
}

func TestSampleAttemptsEveryWindow(t *testing.T) {
	tests := []struct {
		name         string
		samples      int
		chunkSize    int
		wantAttempts int
		wantLastLen  int
	}{
		{"exact multiple", 4096, 1024, 4, 1024},
		{"trailing short window attempted", 4100, 1024, 5, 4},
		{"shorter than one chunk", 100, 1024, 1, 100},
		{"single sample", 1, 1024, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &recordingEstimator{freq: 100}
			Sample(make([]float32, tt.samples), 44100, tt.chunkSize, est)

			if len(est.windows) != tt.wantAttempts {
				t.Fatalf("attempted %d windows, want %d", len(est.windows), tt.wantAttempts)
			}
			last := est.windows[len(est.windows)-1]
			if len(last) != tt.wantLastLen {
				t.Errorf("final window length = %d, want %d", len(last), tt.wantLastLen)
			}
		})
	}
}

func TestSampleZeroSamples(t *testing.T) {
	est := &recordingEstimator{}
	got := Sample(nil, 44100, 1024, est)
	if len(est.windows) != 0 {
		t.Errorf("no windows should be attempted for empty input, got %d", len(est.windows))
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}

func TestSampleDropsDeclinedWindows(t *testing.T) {
	est := &recordingEstimator{
		freq:   200,
		script: []bool{true, false, true, false, true},
	}
	got := Sample(make([]float32, 5*512), 44100, 512, est)

	if len(est.windows) != 5 {
		t.Fatalf("attempted %d windows, want 5 (dropped windows are still attempted)", len(est.windows))
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	// Chunk order must be preserved: attempts 0, 2, 4 produced
	// frequencies 200, 202, 204.
	wantFreqs := []float32{200, 202, 204}
	for i, c := range got {
		if c.Frequency != wantFreqs[i] {
			t.Errorf("candidate %d frequency = %v, want %v", i, c.Frequency, wantFreqs[i])
		}
	}
}

func TestSampleDisablesEstimatorGating(t *testing.T) {
	est := &recordingEstimator{freq: 100}
	Sample(make([]float32, 2048), 48000, 1024, est)

	for i := range est.windows {
		if est.powerThrs[i] != 0 || est.clarityThs[i] != 0 {
			t.Errorf("attempt %d: estimator thresholds must be zero, got power=%v clarity=%v",
				i, est.powerThrs[i], est.clarityThs[i])
		}
		if est.rates[i] != 48000 {
			t.Errorf("attempt %d: sample rate = %d, want 48000", i, est.rates[i])
		}
	}
}

func TestSampleDefaultChunkSize(t *testing.T) {
	est := &recordingEstimator{freq: 100}
	Sample(make([]float32, 3*DefaultChunkSize), 44100, 0, est)
	if len(est.windows) != 3 {
		t.Errorf("chunkSize<=0 should fall back to DefaultChunkSize, attempted %d windows", len(est.windows))
	}
}
