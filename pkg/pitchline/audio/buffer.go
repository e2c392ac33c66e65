// Package audio provides the sample buffer model, the channel reducer,
// and the codec collaborator implementations (decode, encode, remux,
// resample, fetch) consumed by the pitchline pipeline.
package audio

import (
	"fmt"
)

// Buffer is an interleaved PCM float buffer tagged with its sample rate
// and channel count. The sample count is always a multiple of the
// channel count. Each pipeline stage consumes one buffer and produces a
// new one; a buffer handed to a stage must not be reused by the caller.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of per-channel sample frames.
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// ChannelLayoutError reports a channel count the reducer does not
// support. Zero channels and more than two channels are both fatal but
// are distinct causes, so the count is kept for inspection.
type ChannelLayoutError struct {
	Channels int
}

func (e *ChannelLayoutError) Error() string {
	if e.Channels == 0 {
		return "buffer has no channels"
	}
	return fmt.Sprintf("unsupported channel layout: %d channels (mono and stereo only)", e.Channels)
}

// DownmixToMono collapses an interleaved buffer into a single analysis
// channel. Mono input is a no-op rewrap. Stereo is reduced by averaging
// each left/right pair, which preserves aggregate loudness rather than
// truncating a channel. Any other channel count fails with a
// ChannelLayoutError. The transform is pure and rate-preserving.
func DownmixToMono(b *Buffer) (*Buffer, error) {
	switch b.Channels {
	case 1:
		return &Buffer{Samples: b.Samples, SampleRate: b.SampleRate, Channels: 1}, nil
	case 2:
		if len(b.Samples)%2 != 0 {
			return nil, fmt.Errorf("stereo buffer has %d samples, not a multiple of the channel count", len(b.Samples))
		}
		mono := make([]float32, len(b.Samples)/2)
		for i := range mono {
			mono[i] = (b.Samples[2*i] + b.Samples[2*i+1]) / 2
		}
		return &Buffer{Samples: mono, SampleRate: b.SampleRate, Channels: 1}, nil
	default:
		return nil, &ChannelLayoutError{Channels: b.Channels}
	}
}
