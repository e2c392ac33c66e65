// Package pitchline composes decoding, channel reduction, pitch
// analysis, encoding, and report persistence into a single batch
// pipeline. Each operation consumes a fully materialized byte buffer
// and runs to completion or fails deterministically; there is no shared
// state between calls, so independent inputs can be processed from
// separate goroutines with one service instance.
package pitchline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pitchline/pitchline/pkg/logger"
	"github.com/pitchline/pitchline/pkg/models"
	"github.com/pitchline/pitchline/pkg/pitchline/audio"
	"github.com/pitchline/pitchline/pkg/pitchline/pitch"
	"github.com/pitchline/pitchline/pkg/pitchline/storage"
)

// pitchService is the default implementation of the Service interface.
type pitchService struct {
	storage   Storage
	log       Logger
	config    *Config
	decoder   Decoder
	encoder   EncoderFactory
	remuxer   Remuxer
	estimator pitch.Estimator
}

// NewService assembles a pipeline service from the given options.
// Collaborators that are not injected get their defaults: an
// ffmpeg-backed decoder, a WAV encoder and remuxer, the YIN estimator,
// and a SQLite report store at Config.DBPath.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = storage.NewDBClientWithPath(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	dec := cfg.Decoder
	if dec == nil {
		dec = audio.NewFFmpegDecoder(cfg.TempDir)
	}
	enc := cfg.Encoder
	if enc == nil {
		enc = &audio.WAVEncoderFactory{TempDir: cfg.TempDir}
	}
	rmx := cfg.Remuxer
	if rmx == nil {
		rmx = audio.NewWAVRemuxer()
	}
	est := cfg.Estimator
	if est == nil {
		est = pitch.NewYIN()
	}

	return &pitchService{
		storage:   stor,
		log:       cfg.Logger,
		config:    cfg,
		decoder:   dec,
		encoder:   enc,
		remuxer:   rmx,
		estimator: est,
	}, nil
}

// stage emits the start event for st and returns the matching end
// emitter. Failed stages never call the end emitter.
func (s *pitchService) stage(st Stage) func() {
	if s.config.OnEvent == nil {
		return func() {}
	}
	s.config.OnEvent(StageEvent{Stage: st})
	return func() { s.config.OnEvent(StageEvent{Stage: st, Done: true}) }
}

// decodeAndReduce runs the shared front half of every operation:
// decode, integrity validation, and reduction to the single analysis
// channel.
func (s *pitchService) decodeAndReduce(ctx context.Context, src []byte) (*audio.Buffer, error) {
	endDecode := s.stage(StageDecode)
	buf, err := s.decoder.Decode(ctx, src)
	if err != nil {
		return nil, &DecodeIntegrityError{Err: err}
	}
	if buf.SampleRate == 0 || buf.Channels == 0 {
		return nil, &DecodeIntegrityError{SampleRate: buf.SampleRate, Channels: buf.Channels}
	}
	endDecode()
	s.log.Debugf("decoded %d samples, %d Hz, %d channel(s)", len(buf.Samples), buf.SampleRate, buf.Channels)

	endDownmix := s.stage(StageDownmix)
	mono, err := audio.DownmixToMono(buf)
	if err != nil {
		return nil, err
	}
	endDownmix()
	return mono, nil
}

// analyzeMono runs the pitch analysis core over a reduced buffer.
func (s *pitchService) analyzeMono(mono *audio.Buffer, opts AnalyzeOptions) (*pitch.Report, []float32, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	end := s.stage(StageAnalyze)
	candidates := pitch.Sample(mono.Samples, mono.SampleRate, s.config.ChunkSize, s.estimator)
	s.log.Debugf("estimated pitch on %d of %d windows",
		len(candidates), (len(mono.Samples)+s.config.ChunkSize-1)/s.config.ChunkSize)

	trimmed, err := pitch.FilterAndTrim(candidates, opts.MinFrequency, opts.MaxFrequency)
	if err != nil {
		return nil, nil, err
	}
	report := pitch.BuildReport(trimmed, len(mono.Samples), s.config.ChunkSize)
	end()

	s.log.Infof("pitch analysis: mean %.1f Hz, median %.1f Hz, %.1f%% chunks used",
		report.Mean, report.Median, report.ChunksUsed)
	return &report, trimmed, nil
}

func (s *pitchService) Analyze(ctx context.Context, src []byte, opts AnalyzeOptions) (*pitch.Report, []float32, error) {
	mono, err := s.decodeAndReduce(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return s.analyzeMono(mono, opts)
}

func (s *pitchService) AnalyzeFile(ctx context.Context, path, title string, opts AnalyzeOptions) (string, *pitch.Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	mono, err := s.decodeAndReduce(ctx, src)
	if err != nil {
		return "", nil, err
	}
	report, _, err := s.analyzeMono(mono, opts)
	if err != nil {
		return "", nil, err
	}

	opts = opts.withDefaults()
	if title == "" {
		title = filepath.Base(path)
	}
	id, err := s.storage.SaveReport(models.ReportRecord{
		Source:       path,
		Title:        title,
		MinFrequency: opts.MinFrequency,
		MaxFrequency: opts.MaxFrequency,
		ChunksUsed:   report.ChunksUsed,
		MeanHz:       report.Mean,
		MedianHz:     report.Median,
		LowestHz:     report.Lowest,
		HighestHz:    report.Highest,
		DurationMs:   int(float64(len(mono.Samples)) / float64(mono.SampleRate) * 1000),
	})
	if err != nil {
		return "", nil, fmt.Errorf("saving report: %w", err)
	}
	s.log.Infof("saved report %s for %s", id, title)
	return id, report, nil
}

func (s *pitchService) Compose(ctx context.Context, src []byte, opts ComposeOptions) ([]byte, error) {
	out, _, _, err := s.compose(ctx, src, nil, opts)
	return out, err
}

func (s *pitchService) ComposeWithReport(ctx context.Context, src []byte, aopts AnalyzeOptions, copts ComposeOptions) ([]byte, *pitch.Report, []float32, error) {
	return s.compose(ctx, src, &aopts, copts)
}

// compose is the full pipeline. The analysis side channel runs over the
// reduced buffer before any resampling so the report always reflects
// the source rate. Any stage failure aborts the run and discards
// partial output.
func (s *pitchService) compose(ctx context.Context, src []byte, aopts *AnalyzeOptions, copts ComposeOptions) ([]byte, *pitch.Report, []float32, error) {
	mono, err := s.decodeAndReduce(ctx, src)
	if err != nil {
		return nil, nil, nil, err
	}

	var report *pitch.Report
	var trimmed []float32
	if aopts != nil {
		report, trimmed, err = s.analyzeMono(mono, *aopts)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	samples := mono.Samples
	rate := mono.SampleRate
	if copts.OutputSampleRate > 0 && copts.OutputSampleRate != rate {
		end := s.stage(StageResample)
		samples, err = audio.Resample(samples, rate, copts.OutputSampleRate)
		if err != nil {
			return nil, nil, nil, err
		}
		rate = copts.OutputSampleRate
		end()
	}

	endEncode := s.stage(StageEncode)
	enc, err := s.encoder.NewEncoder(audio.EncoderConfig{
		StreamSerial:  copts.StreamSerial,
		Comments:      copts.Comments,
		SampleRate:    rate,
		Channels:      1,
		TargetQuality: copts.TargetQuality,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	for start := 0; start < len(samples); start += EncodeBlockSize {
		end := start + EncodeBlockSize
		if end > len(samples) {
			end = len(samples)
		}
		if err := enc.EncodeBlock(samples[start:end]); err != nil {
			return nil, nil, nil, err
		}
	}
	out, err := enc.Finish()
	if err != nil {
		return nil, nil, nil, err
	}
	endEncode()
	s.log.Debugf("encoded %d samples at %d Hz into %d bytes", len(samples), rate, len(out))

	if copts.Remux {
		end := s.stage(StageRemux)
		out, err = s.remuxer.Remux(out)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("remuxing: %w", err)
		}
		end()
	}

	return out, report, trimmed, nil
}

func (s *pitchService) FetchYouTubeAudio(ctx context.Context, url string) (string, error) {
	s.log.Infof("fetching audio from %s", url)
	return audio.FetchYouTubeAudio(ctx, url, s.config.TempDir)
}

func (s *pitchService) GetReport(id string) (*models.ReportRecord, error) {
	return s.storage.GetReportByID(id)
}

func (s *pitchService) ListReports() ([]models.ReportRecord, error) {
	return s.storage.ListReports()
}

func (s *pitchService) DeleteReport(id string) error {
	return s.storage.DeleteReportByID(id)
}

func (s *pitchService) Close() error {
	return s.storage.Close()
}
