package pitch

import (
	"errors"
	"math"
	"sort"
)

// ErrNoPitchCandidates is returned when the range filter leaves no
// usable frequency values. Report construction needs at least one
// element, so this is a hard failure rather than a degenerate report.
var ErrNoPitchCandidates = errors.New("no pitch candidates within the frequency bounds")

// trimRatio is the fraction of the sorted candidate set removed from
// each tail. Fixed policy, not a tunable.
const trimRatio = 0.10

// FilterAndTrim retains candidates strictly inside (minFreq, maxFreq),
// rejecting boundary values, sorts the surviving frequencies
// ascending, and removes round(len*0.10) elements from each tail,
// leaving roughly the central 80% of the distribution.
//
// The trim count is clamped to (len-1)/2 so that a small filtered set
// (down to a single element) always leaves at least one value. Rounding
// is half-away-from-zero.
func FilterAndTrim(candidates []Candidate, minFreq, maxFreq float32) ([]float32, error) {
	freqs := make([]float32, 0, len(candidates))
	for _, c := range candidates {
		if c.Frequency > minFreq && c.Frequency < maxFreq {
			freqs = append(freqs, c.Frequency)
		}
	}
	if len(freqs) == 0 {
		return nil, ErrNoPitchCandidates
	}

	sort.Slice(freqs, func(i, j int) bool { return freqs[i] < freqs[j] })

	low := int(math.Round(float64(len(freqs)) * trimRatio))
	if most := (len(freqs) - 1) / 2; low > most {
		low = most
	}
	return freqs[low : len(freqs)-low], nil
}
