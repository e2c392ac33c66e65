package pitchline

import (
	"context"

	"github.com/pitchline/pitchline/pkg/models"
	"github.com/pitchline/pitchline/pkg/pitchline/audio"
	"github.com/pitchline/pitchline/pkg/pitchline/pitch"
)

// Service is the pipeline facade: decode, pitch analysis, mono
// reduction, encoding, and report bookkeeping behind one interface.
type Service interface {
	// Analyze runs decode -> validate -> downmix -> pitch analysis and
	// returns the report together with the trimmed frequency values the
	// report was built from.
	Analyze(ctx context.Context, src []byte, opts AnalyzeOptions) (*pitch.Report, []float32, error)

	// AnalyzeFile analyzes an audio file, persists the resulting report,
	// and returns the stored record's ID alongside the report.
	AnalyzeFile(ctx context.Context, path, title string, opts AnalyzeOptions) (string, *pitch.Report, error)

	// Compose runs decode -> validate -> downmix -> [resample] ->
	// encode -> [remux] and returns the encoded stream.
	Compose(ctx context.Context, src []byte, opts ComposeOptions) ([]byte, error)

	// ComposeWithReport is Compose plus pitch analysis of the reduced
	// buffer; it returns the encoded stream, the report, and the
	// trimmed frequency values.
	ComposeWithReport(ctx context.Context, src []byte, aopts AnalyzeOptions, copts ComposeOptions) ([]byte, *pitch.Report, []float32, error)

	// FetchYouTubeAudio downloads a video's audio track as WAV into the
	// service temp dir and returns the file path.
	FetchYouTubeAudio(ctx context.Context, url string) (string, error)

	GetReport(id string) (*models.ReportRecord, error)
	ListReports() ([]models.ReportRecord, error)
	DeleteReport(id string) error

	Close() error
}

// Decoder turns container/codec bytes into an interleaved PCM float
// buffer. A decoder reporting success with a zero sample rate or zero
// channel count is treated as a decode integrity failure by the
// pipeline.
type Decoder interface {
	Decode(ctx context.Context, src []byte) (*audio.Buffer, error)
}

// EncoderFactory validates an encoder configuration and opens a block
// encoder for one output stream.
type EncoderFactory interface {
	NewEncoder(cfg audio.EncoderConfig) (audio.BlockEncoder, error)
}

// Remuxer restructures an already-encoded stream without re-encoding
// the payload. Output duration metadata is not guaranteed accurate.
type Remuxer interface {
	Remux(encoded []byte) ([]byte, error)
}

// Storage persists and queries analysis reports.
type Storage interface {
	SaveReport(rec models.ReportRecord) (string, error)
	GetReportByID(id string) (*models.ReportRecord, error)
	ListReports() ([]models.ReportRecord, error)
	DeleteReportByID(id string) error
	Close() error
}

// Logger is the minimal logging surface the library needs.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
