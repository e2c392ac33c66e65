package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"

	"github.com/pitchline/pitchline/pkg/utils"
)

// ffmpegTimeout bounds a single decode invocation when the caller's
// context carries no deadline of its own.
const ffmpegTimeout = 60 * time.Second

// WAVDecoder decodes RIFF/WAVE byte streams entirely in memory.
type WAVDecoder struct{}

// NewWAVDecoder returns a pure-Go WAV decoder.
func NewWAVDecoder() *WAVDecoder { return &WAVDecoder{} }

// Decode parses a WAV stream into a normalized float buffer. Samples
// are scaled by the source bit depth into [-1, 1].
func (d *WAVDecoder) Decode(ctx context.Context, src []byte) (*Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(bytes.NewReader(src))
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV stream")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	maxVal := float64(int64(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(float64(v) / maxVal)
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// FFmpegDecoder decodes arbitrary container/codec formats by shelling
// out to ffmpeg and reading back an intermediate 16-bit WAV. Channel
// layout and sample rate are passed through untouched; reduction and
// resampling are pipeline stages, not decoder concerns.
type FFmpegDecoder struct {
	TempDir string
}

// NewFFmpegDecoder returns a decoder that stages its intermediate files
// in tempDir (the OS temp dir when empty).
func NewFFmpegDecoder(tempDir string) *FFmpegDecoder {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &FFmpegDecoder{TempDir: tempDir}
}

// Decode writes src to a staging file, converts it with ffmpeg, and
// parses the result with the in-memory WAV decoder.
func (d *FFmpegDecoder) Decode(ctx context.Context, src []byte) (*Buffer, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ffmpegTimeout)
		defer cancel()
	}

	if err := utils.MakeDir(d.TempDir); err != nil {
		return nil, err
	}

	inPath := filepath.Join(d.TempDir, "pitchline-in-"+utils.GenerateUUID())
	outPath := inPath + ".wav"
	defer utils.DeleteFile(inPath)
	defer utils.DeleteFile(outPath)

	if err := os.WriteFile(inPath, src, 0o644); err != nil {
		return nil, fmt.Errorf("staging input: %w", err)
	}

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "error",
		"-i", inPath,
		"-c:a", "pcm_s16le",
		outPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading converted audio: %w", err)
	}

	return (&WAVDecoder{}).Decode(ctx, converted)
}
