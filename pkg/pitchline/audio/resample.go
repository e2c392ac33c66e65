package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts a mono sample buffer from srcRate to dstRate using
// a high-quality pure-Go bandlimited resampler. Equal rates return a
// fresh copy so the output never aliases the input.
func Resample(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates: %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("creating resampler: %w", err)
	}

	in := make([]float64, len(samples))
	for i, s := range samples {
		in[i] = float64(s)
	}
	out, err := rs.Process(in)
	if err != nil {
		return nil, fmt.Errorf("resampling %d -> %d: %w", srcRate, dstRate, err)
	}
	// Drain the polyphase filter tail so the output covers the full
	// input duration.
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("flushing resampler: %w", err)
	}
	out = append(out, tail...)

	converted := make([]float32, len(out))
	for i, s := range out {
		converted[i] = float32(s)
	}
	return converted, nil
}
