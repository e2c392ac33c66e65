package pitchline

import "github.com/pitchline/pitchline/pkg/pitchline/pitch"

// PitchReport re-exports the analysis report type so callers of the
// facade do not need to import the pitch package directly.
type PitchReport = pitch.Report

// Default acceptance window, prioritizing the human vocal range. The
// documented ChunksUsed credibility thresholds (1% instrumental, 10%
// speech) assume these bounds.
const (
	DefaultMinFrequency float32 = 50.0
	DefaultMaxFrequency float32 = 600.0
)

// EncodeBlockSize is the number of samples handed to the encoder per
// block. The encoder backends carry internal buffering assumptions
// around this figure, so it is a fixed constant rather than something
// derived from the input.
const EncodeBlockSize = 512

// AnalyzeOptions bounds which pitch candidates are accepted. Zero
// values fall back to the defaults; explicit bounds must satisfy
// 0 < min < max.
type AnalyzeOptions struct {
	MinFrequency float32 // Hz, exclusive lower bound
	MaxFrequency float32 // Hz, exclusive upper bound
}

func (o AnalyzeOptions) withDefaults() AnalyzeOptions {
	if o.MinFrequency == 0 && o.MaxFrequency == 0 {
		return AnalyzeOptions{MinFrequency: DefaultMinFrequency, MaxFrequency: DefaultMaxFrequency}
	}
	return o
}

func (o AnalyzeOptions) validate() error {
	if o.MinFrequency <= 0 || o.MaxFrequency <= 0 || o.MinFrequency >= o.MaxFrequency {
		return ErrInvalidFrequencyBounds
	}
	return nil
}

// ComposeOptions configures the encode side of the pipeline.
type ComposeOptions struct {
	// StreamSerial tags the logical stream in containers that carry
	// one. Any value works; zero is fine.
	StreamSerial int32

	// TargetQuality is the encoder quality on the [-0.2, 2.0] VBR
	// scale, low end meaning more compression.
	TargetQuality float32

	// Comments are key/value metadata pairs forwarded to the encoder.
	Comments [][2]string

	// Remux runs the optional container optimization pass over the
	// encoded stream. Duration metadata may shift; opt in knowingly.
	Remux bool

	// OutputSampleRate resamples the reduced buffer before encoding.
	// Zero keeps the source rate.
	OutputSampleRate int
}
