package audio

import (
	"errors"
	"testing"
)

func TestDownmixMonoPassthrough(t *testing.T) {
	in := &Buffer{Samples: []float32{0.1, -0.2, 0.3}, SampleRate: 8000, Channels: 1}
	out, err := DownmixToMono(in)
	if err != nil {
		t.Fatalf("DownmixToMono: %v", err)
	}
	if out.Channels != 1 || out.SampleRate != 8000 {
		t.Errorf("got %d channels at %d Hz, want 1 channel at 8000 Hz", out.Channels, out.SampleRate)
	}
	if len(out.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(out.Samples))
	}
	for i, want := range in.Samples {
		if out.Samples[i] != want {
			t.Errorf("sample %d = %v, want %v", i, out.Samples[i], want)
		}
	}
}

func TestDownmixStereoAverages(t *testing.T) {
	in := &Buffer{
		Samples:    []float32{1, 0, 0.5, 0.5, -1, 1, -0.25, -0.75},
		SampleRate: 44100,
		Channels:   2,
	}
	out, err := DownmixToMono(in)
	if err != nil {
		t.Fatalf("DownmixToMono: %v", err)
	}
	want := []float32{0.5, 0.5, 0, -0.5}
	if len(out.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(out.Samples), len(want))
	}
	for i := range want {
		if out.Samples[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, out.Samples[i], want[i])
		}
	}
	if out.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", out.SampleRate)
	}
}

func TestDownmixRejectsUnsupportedLayouts(t *testing.T) {
	for _, channels := range []int{0, 3, 6} {
		in := &Buffer{Samples: make([]float32, 12), SampleRate: 44100, Channels: channels}
		_, err := DownmixToMono(in)
		var cle *ChannelLayoutError
		if !errors.As(err, &cle) {
			t.Fatalf("channels=%d: err = %v, want ChannelLayoutError", channels, err)
		}
		if cle.Channels != channels {
			t.Errorf("error reports %d channels, want %d", cle.Channels, channels)
		}
	}
}

func TestDownmixRejectsOddStereoBuffer(t *testing.T) {
	in := &Buffer{Samples: make([]float32, 5), SampleRate: 44100, Channels: 2}
	if _, err := DownmixToMono(in); err == nil {
		t.Fatal("expected error for odd-length stereo buffer")
	}
}

func TestBufferFrames(t *testing.T) {
	tests := []struct {
		samples  int
		channels int
		want     int
	}{
		{10, 1, 10},
		{10, 2, 5},
		{0, 2, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		b := &Buffer{Samples: make([]float32, tt.samples), Channels: tt.channels}
		if got := b.Frames(); got != tt.want {
			t.Errorf("Frames() with %d samples, %d channels = %d, want %d",
				tt.samples, tt.channels, got, tt.want)
		}
	}
}
