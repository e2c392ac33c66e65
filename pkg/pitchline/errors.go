package pitchline

import (
	"errors"
	"fmt"
)

// ErrInvalidFrequencyBounds is returned when an acceptance window does
// not satisfy 0 < min < max.
var ErrInvalidFrequencyBounds = errors.New("frequency bounds must satisfy 0 < min < max")

// DecodeIntegrityError means the decoder either failed outright or
// produced metadata the pipeline cannot proceed on (zero sample rate or
// zero channels). It always aborts the run.
type DecodeIntegrityError struct {
	SampleRate int
	Channels   int
	Err        error
}

func (e *DecodeIntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %v", e.Err)
	}
	return fmt.Sprintf("decode produced unusable metadata: sample rate %d, channels %d", e.SampleRate, e.Channels)
}

func (e *DecodeIntegrityError) Unwrap() error { return e.Err }
