package audio

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNewEncoderRejectsBadConfig(t *testing.T) {
	f := &WAVEncoderFactory{}
	tests := []struct {
		name string
		cfg  EncoderConfig
	}{
		{"zero sample rate", EncoderConfig{SampleRate: 0, Channels: 1}},
		{"negative sample rate", EncoderConfig{SampleRate: -44100, Channels: 1}},
		{"stereo", EncoderConfig{SampleRate: 44100, Channels: 2}},
		{"quality too low", EncoderConfig{SampleRate: 44100, Channels: 1, TargetQuality: -0.3}},
		{"quality too high", EncoderConfig{SampleRate: 44100, Channels: 1, TargetQuality: 2.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.NewEncoder(tt.cfg)
			var ee *EncodingError
			if !errors.As(err, &ee) {
				t.Fatalf("err = %v, want EncodingError", err)
			}
		})
	}
}

func encodeSine(t *testing.T, freq float64, rate int, seconds float64, quality float32) ([]byte, []float32) {
	t.Helper()

	n := int(float64(rate) * seconds)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}

	f := &WAVEncoderFactory{TempDir: t.TempDir()}
	enc, err := f.NewEncoder(EncoderConfig{
		SampleRate:    rate,
		Channels:      1,
		TargetQuality: quality,
	})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	const block = 512
	for start := 0; start < len(samples); start += block {
		end := start + block
		if end > len(samples) {
			end = len(samples)
		}
		if err := enc.EncodeBlock(samples[start:end]); err != nil {
			t.Fatalf("EncodeBlock: %v", err)
		}
	}
	out, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return out, samples
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, quality := range []float32{0, 1.5} {
		out, samples := encodeSine(t, 440, 44100, 0.25, quality)

		buf, err := NewWAVDecoder().Decode(context.Background(), out)
		if err != nil {
			t.Fatalf("quality %v: decoding encoded stream: %v", quality, err)
		}
		if buf.Channels != 1 {
			t.Errorf("quality %v: channels = %d, want 1", quality, buf.Channels)
		}
		if buf.SampleRate != 44100 {
			t.Errorf("quality %v: sample rate = %d, want 44100", quality, buf.SampleRate)
		}
		if len(buf.Samples) != len(samples) {
			t.Fatalf("quality %v: sample count = %d, want %d", quality, len(buf.Samples), len(samples))
		}
		for i := range samples {
			if math.Abs(float64(buf.Samples[i]-samples[i])) > 1e-3 {
				t.Fatalf("quality %v: sample %d = %v, want %v", quality, i, buf.Samples[i], samples[i])
			}
		}
	}
}

func TestEncodeBlockClipsOutOfRange(t *testing.T) {
	f := &WAVEncoderFactory{TempDir: t.TempDir()}
	enc, err := f.NewEncoder(EncoderConfig{SampleRate: 8000, Channels: 1})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.EncodeBlock([]float32{2.0, -3.0, 0.5}); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	out, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	buf, err := NewWAVDecoder().Decode(context.Background(), out)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if buf.Samples[0] < 0.99 {
		t.Errorf("sample 0 = %v, want clipped to ~1", buf.Samples[0])
	}
	if buf.Samples[1] > -0.99 {
		t.Errorf("sample 1 = %v, want clipped to ~-1", buf.Samples[1])
	}
}

func TestEncoderRejectsUseAfterFinish(t *testing.T) {
	f := &WAVEncoderFactory{TempDir: t.TempDir()}
	enc, err := f.NewEncoder(EncoderConfig{SampleRate: 8000, Channels: 1})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := enc.EncodeBlock(make([]float32, 512)); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if _, err := enc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := enc.EncodeBlock(make([]float32, 512)); err == nil {
		t.Error("expected error encoding after Finish")
	}
	if _, err := enc.Finish(); err == nil {
		t.Error("expected error finishing twice")
	}
}
