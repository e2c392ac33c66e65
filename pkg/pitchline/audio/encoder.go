package audio

import (
	"fmt"
	"io"
	"os"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Target quality bounds, matching the VBR scale of the lossy encoders
// this interface was designed around. The WAV backend maps the scale to
// a bit depth; other backends map it to a bitrate strategy.
const (
	MinTargetQuality = -0.2
	MaxTargetQuality = 2.0
)

// EncoderConfig carries everything an encoder backend needs up front.
// StreamSerial identifies the logical stream in containers that use
// one; backends without the concept ignore it.
type EncoderConfig struct {
	StreamSerial  int32
	Comments      [][2]string // key/value metadata pairs
	SampleRate    int
	Channels      int // must be 1; the pipeline always encodes mono
	TargetQuality float32
}

// BlockEncoder consumes fixed-size mono sample blocks and produces an
// encoded byte stream. Finish must be called exactly once to flush
// trailing encoder state; the stream is not usable before that.
type BlockEncoder interface {
	EncodeBlock(block []float32) error
	Finish() ([]byte, error)
}

// EncodingError wraps a rejected configuration or a failed block write.
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding failed: %s: %v", e.Reason, e.Err)
	}
	return "encoding failed: " + e.Reason
}

func (e *EncodingError) Unwrap() error { return e.Err }

// WAVEncoderFactory builds WAV block encoders staged through temp files
// (the WAV writer needs a seekable target to patch chunk sizes on
// close).
type WAVEncoderFactory struct {
	TempDir string
}

// NewEncoder validates cfg and opens a new encoder. Invalid sample
// rate, a channel count other than 1, or a target quality outside
// [-0.2, 2.0] are rejected with an EncodingError.
func (f *WAVEncoderFactory) NewEncoder(cfg EncoderConfig) (BlockEncoder, error) {
	if cfg.SampleRate <= 0 {
		return nil, &EncodingError{Reason: fmt.Sprintf("invalid sample rate %d", cfg.SampleRate)}
	}
	if cfg.Channels != 1 {
		return nil, &EncodingError{Reason: fmt.Sprintf("encoder is mono only, got %d channels", cfg.Channels)}
	}
	if cfg.TargetQuality < MinTargetQuality || cfg.TargetQuality > MaxTargetQuality {
		return nil, &EncodingError{Reason: fmt.Sprintf("target quality %v outside [%v, %v]",
			cfg.TargetQuality, MinTargetQuality, MaxTargetQuality)}
	}

	dir := f.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	file, err := os.CreateTemp(dir, "pitchline-enc-*.wav")
	if err != nil {
		return nil, &EncodingError{Reason: "creating staging file", Err: err}
	}

	// The upper half of the quality scale buys headroom, not bitrate,
	// in a lossless container.
	bitDepth := 16
	if cfg.TargetQuality >= 1.0 {
		bitDepth = 24
	}

	enc := wav.NewEncoder(file, cfg.SampleRate, bitDepth, cfg.Channels, 1)
	if meta := commentsToMetadata(cfg.Comments); meta != nil {
		enc.Metadata = meta
	}

	return &wavBlockEncoder{
		file:     file,
		enc:      enc,
		cfg:      cfg,
		bitDepth: bitDepth,
	}, nil
}

type wavBlockEncoder struct {
	file     *os.File
	enc      *wav.Encoder
	cfg      EncoderConfig
	bitDepth int
	finished bool
}

// EncodeBlock quantizes one mono block and appends it to the stream.
// Samples outside [-1, 1] are clipped.
func (e *wavBlockEncoder) EncodeBlock(block []float32) error {
	if e.finished {
		return &EncodingError{Reason: "encoder already finalized"}
	}

	scale := float64(int64(1)<<(e.bitDepth-1) - 1)
	data := make([]int, len(block))
	for i, s := range block {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(v * scale)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: 1,
			SampleRate:  e.cfg.SampleRate,
		},
		Data:           data,
		SourceBitDepth: e.bitDepth,
	}
	if err := e.enc.Write(buf); err != nil {
		return &EncodingError{Reason: "writing sample block", Err: err}
	}
	return nil
}

// Finish flushes the container headers and returns the full encoded
// stream. The staging file is removed regardless of outcome.
func (e *wavBlockEncoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, &EncodingError{Reason: "encoder already finalized"}
	}
	e.finished = true

	defer os.Remove(e.file.Name())
	defer e.file.Close()

	if err := e.enc.Close(); err != nil {
		return nil, &EncodingError{Reason: "finalizing stream", Err: err}
	}
	if _, err := e.file.Seek(0, io.SeekStart); err != nil {
		return nil, &EncodingError{Reason: "rewinding staging file", Err: err}
	}
	out, err := io.ReadAll(e.file)
	if err != nil {
		return nil, &EncodingError{Reason: "reading staged stream", Err: err}
	}
	return out, nil
}

// commentsToMetadata maps comment pairs onto the WAV LIST-INFO fields.
// Unrecognized keys are joined into the free-form comment field.
func commentsToMetadata(comments [][2]string) *wav.Metadata {
	if len(comments) == 0 {
		return nil
	}
	meta := &wav.Metadata{}
	var extra []string
	for _, kv := range comments {
		switch strings.ToLower(kv[0]) {
		case "title":
			meta.Title = kv[1]
		case "artist":
			meta.Artist = kv[1]
		case "genre":
			meta.Genre = kv[1]
		case "comment":
			extra = append(extra, kv[1])
		default:
			extra = append(extra, kv[0]+"="+kv[1])
		}
	}
	meta.Comments = strings.Join(extra, "; ")
	return meta
}
