// Package pitch implements the fundamental-frequency analysis core:
// chunked pitch sampling, range filtering with percentile trimming, and
// summary report construction. The three stages are independent pure
// functions so each policy can be tested and tuned in isolation.
package pitch

// Candidate is a single-window pitch estimate. Clarity is carried for
// future filtering policies even though the current filter only looks
// at the frequency.
type Candidate struct {
	Frequency float32 // Hz
	Clarity   float32 // periodicity strength, 0..1
}

// Estimator estimates the dominant pitch of one analysis window.
// Implementations return ok=false when the window has no measurable
// pitch; that is an expected outcome, not an error.
//
// powerThreshold and clarityThreshold gate the estimator's own
// accept/reject logic. The sampler always passes zero for both so that
// all filtering policy lives downstream in FilterAndTrim.
type Estimator interface {
	Estimate(window []float32, sampleRate int, powerThreshold, clarityThreshold float64) (Candidate, bool)
}
