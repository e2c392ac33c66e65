package pitchline

import (
	"github.com/pitchline/pitchline/pkg/pitchline/pitch"
)

// Config collects the service's tunables and injected collaborators.
type Config struct {
	DBPath    string
	TempDir   string
	ChunkSize int

	Logger    Logger
	Storage   Storage
	Decoder   Decoder
	Encoder   EncoderFactory
	Remuxer   Remuxer
	Estimator pitch.Estimator
	OnEvent   EventFunc
}

// Option mutates a Config during NewService.
type Option func(*Config)

// WithDBPath sets the report database location.
func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

// WithTempDir sets the staging directory for codec intermediates and
// fetched audio.
func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

// WithChunkSize overrides the analysis window length.
func WithChunkSize(size int) Option {
	return func(c *Config) { c.ChunkSize = size }
}

// WithLogger injects a logger.
func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

// WithStorage injects a report store, replacing the default SQLite one.
func WithStorage(storage Storage) Option {
	return func(c *Config) { c.Storage = storage }
}

// WithDecoder replaces the default ffmpeg-backed decoder.
func WithDecoder(dec Decoder) Option {
	return func(c *Config) { c.Decoder = dec }
}

// WithEncoderFactory replaces the default WAV encoder backend.
func WithEncoderFactory(enc EncoderFactory) Option {
	return func(c *Config) { c.Encoder = enc }
}

// WithRemuxer replaces the default WAV remuxer.
func WithRemuxer(r Remuxer) Option {
	return func(c *Config) { c.Remuxer = r }
}

// WithEstimator substitutes the single-window pitch estimator strategy.
func WithEstimator(est pitch.Estimator) Option {
	return func(c *Config) { c.Estimator = est }
}

// WithEventHook registers a stage event callback.
func WithEventHook(fn EventFunc) Option {
	return func(c *Config) { c.OnEvent = fn }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:    "pitchline.sqlite3",
		TempDir:   "/tmp",
		ChunkSize: pitch.DefaultChunkSize,
	}
}
