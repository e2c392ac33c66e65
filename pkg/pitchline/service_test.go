package pitchline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pitchline/pitchline/pkg/models"
	"github.com/pitchline/pitchline/pkg/pitchline/audio"
	"github.com/pitchline/pitchline/pkg/pitchline/pitch"
)

// memStorage keeps report records in a map so facade tests stay off the
// filesystem.
type memStorage struct {
	records map[string]models.ReportRecord
	nextID  int
}

func newMemStorage() *memStorage {
	return &memStorage{records: map[string]models.ReportRecord{}}
}

func (m *memStorage) SaveReport(rec models.ReportRecord) (string, error) {
	m.nextID++
	id := string(rune('a' + m.nextID))
	rec.ID = id
	m.records[id] = rec
	return id, nil
}

func (m *memStorage) GetReportByID(id string) (*models.ReportRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.New("report not found")
	}
	return &rec, nil
}

func (m *memStorage) ListReports() ([]models.ReportRecord, error) {
	out := make([]models.ReportRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStorage) DeleteReportByID(id string) error {
	if _, ok := m.records[id]; !ok {
		return errors.New("report not found")
	}
	delete(m.records, id)
	return nil
}

func (m *memStorage) Close() error { return nil }

func newTestService(t *testing.T, extra ...Option) Service {
	t.Helper()
	opts := append([]Option{
		WithDecoder(audio.NewWAVDecoder()),
		WithStorage(newMemStorage()),
		WithTempDir(t.TempDir()),
	}, extra...)
	svc, err := NewService(opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// sineSamples renders seconds of a sine at freq, interleaved across
// channels with the same signal in each.
func sineSamples(freq float64, rate, channels int, seconds float64) []float32 {
	frames := int(float64(rate) * seconds)
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		for c := 0; c < channels; c++ {
			out[i*channels+c] = v
		}
	}
	return out
}

// encodeWAV builds an in-memory 16-bit WAV stream for test inputs.
func encodeWAV(t *testing.T, samples []float32, rate, channels int) []byte {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "in-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(float64(s) * 32767)
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing WAV: %v", err)
	}

	out, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("reading WAV: %v", err)
	}
	return out
}

func TestAnalyzeSine(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	src := encodeWAV(t, sineSamples(440, 44100, 1, 1), 44100, 1)
	report, trimmed, err := svc.Analyze(context.Background(), src, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(trimmed) == 0 {
		t.Fatal("expected trimmed frequency values")
	}
	if math.Abs(float64(report.Mean)-440) > 5 {
		t.Errorf("mean = %.2f Hz, want ~440", report.Mean)
	}
	if math.Abs(float64(report.Median)-440) > 5 {
		t.Errorf("median = %.2f Hz, want ~440", report.Median)
	}
	if report.Lowest > report.Median || report.Median > report.Highest {
		t.Errorf("want lowest <= median <= highest, got %.2f / %.2f / %.2f",
			report.Lowest, report.Median, report.Highest)
	}
	if report.ChunksUsed < 50 {
		t.Errorf("chunks used = %.1f%%, want a clean tone above 50%%", report.ChunksUsed)
	}
}

func TestAnalyzeStereoReducesFirst(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	src := encodeWAV(t, sineSamples(220, 44100, 2, 1), 44100, 2)
	report, _, err := svc.Analyze(context.Background(), src, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if math.Abs(float64(report.Median)-220) > 5 {
		t.Errorf("median = %.2f Hz, want ~220", report.Median)
	}
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	_, _, err := svc.Analyze(context.Background(), []byte("definitely not audio"), AnalyzeOptions{})
	var die *DecodeIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("err = %v, want DecodeIntegrityError", err)
	}
}

type fixedDecoder struct{ buf *audio.Buffer }

func (d fixedDecoder) Decode(ctx context.Context, src []byte) (*audio.Buffer, error) {
	return d.buf, nil
}

func TestAnalyzeRejectsZeroRate(t *testing.T) {
	svc := newTestService(t, WithDecoder(fixedDecoder{
		buf: &audio.Buffer{Samples: make([]float32, 1024), SampleRate: 0, Channels: 1},
	}))
	defer svc.Close()

	_, _, err := svc.Analyze(context.Background(), []byte{0}, AnalyzeOptions{})
	var die *DecodeIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("err = %v, want DecodeIntegrityError", err)
	}
	if die.SampleRate != 0 {
		t.Errorf("SampleRate = %d, want 0", die.SampleRate)
	}
}

func TestAnalyzeSilenceHasNoCandidates(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	src := encodeWAV(t, make([]float32, 44100), 44100, 1)
	_, _, err := svc.Analyze(context.Background(), src, AnalyzeOptions{})
	if !errors.Is(err, pitch.ErrNoPitchCandidates) {
		t.Fatalf("err = %v, want ErrNoPitchCandidates", err)
	}
}

func TestAnalyzeRejectsBadBounds(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	src := encodeWAV(t, sineSamples(440, 44100, 1, 0.5), 44100, 1)
	for _, opts := range []AnalyzeOptions{
		{MinFrequency: 600, MaxFrequency: 50},
		{MinFrequency: -1, MaxFrequency: 600},
		{MinFrequency: 100, MaxFrequency: 100},
	} {
		if _, _, err := svc.Analyze(context.Background(), src, opts); !errors.Is(err, ErrInvalidFrequencyBounds) {
			t.Errorf("bounds (%v, %v): err = %v, want ErrInvalidFrequencyBounds",
				opts.MinFrequency, opts.MaxFrequency, err)
		}
	}
}

func TestComposeRoundTrip(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	samples := sineSamples(440, 44100, 2, 0.5)
	src := encodeWAV(t, samples, 44100, 2)

	out, err := svc.Compose(context.Background(), src, ComposeOptions{Remux: true})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	buf, err := audio.NewWAVDecoder().Decode(context.Background(), out)
	if err != nil {
		t.Fatalf("decoding composed output: %v", err)
	}
	if buf.Channels != 1 {
		t.Errorf("channels = %d, want 1", buf.Channels)
	}
	if buf.SampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", buf.SampleRate)
	}
	if want := len(samples) / 2; len(buf.Samples) != want {
		t.Errorf("sample count = %d, want %d", len(buf.Samples), want)
	}
}

func TestComposeResamples(t *testing.T) {
	svc := newTestService(t)
	defer svc.Close()

	src := encodeWAV(t, sineSamples(440, 44100, 1, 0.5), 44100, 1)
	out, err := svc.Compose(context.Background(), src, ComposeOptions{OutputSampleRate: 22050})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	buf, err := audio.NewWAVDecoder().Decode(context.Background(), out)
	if err != nil {
		t.Fatalf("decoding composed output: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", buf.SampleRate)
	}
	want := 22050 / 2
	if diff := len(buf.Samples) - want; diff < -want/20 || diff > want/20 {
		t.Errorf("sample count = %d, want within 5%% of %d", len(buf.Samples), want)
	}
}

func TestComposeWithReportEmitsStagesInOrder(t *testing.T) {
	var events []StageEvent
	svc := newTestService(t, WithEventHook(func(ev StageEvent) {
		events = append(events, ev)
	}))
	defer svc.Close()

	src := encodeWAV(t, sineSamples(440, 44100, 1, 1), 44100, 1)
	_, report, _, err := svc.ComposeWithReport(context.Background(), src,
		AnalyzeOptions{}, ComposeOptions{Remux: true})
	if err != nil {
		t.Fatalf("ComposeWithReport: %v", err)
	}
	if report == nil {
		t.Fatal("expected a pitch report")
	}

	wantStages := []Stage{StageDecode, StageDownmix, StageAnalyze, StageEncode, StageRemux}
	if len(events) != 2*len(wantStages) {
		t.Fatalf("got %d events, want %d", len(events), 2*len(wantStages))
	}
	for i, st := range wantStages {
		start, end := events[2*i], events[2*i+1]
		if start.Stage != st || start.Done {
			t.Errorf("event %d = %+v, want start of %s", 2*i, start, st)
		}
		if end.Stage != st || !end.Done {
			t.Errorf("event %d = %+v, want end of %s", 2*i+1, end, st)
		}
	}
}

func TestAnalyzeFilePersistsReport(t *testing.T) {
	store := newMemStorage()
	svc := newTestService(t, WithStorage(store))
	defer svc.Close()

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := os.WriteFile(path, encodeWAV(t, sineSamples(440, 44100, 1, 1), 44100, 1), 0o644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	id, report, err := svc.AnalyzeFile(context.Background(), path, "test tone", AnalyzeOptions{})
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}

	rec, err := svc.GetReport(id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if rec.Title != "test tone" {
		t.Errorf("title = %q, want %q", rec.Title, "test tone")
	}
	if rec.MeanHz != report.Mean {
		t.Errorf("stored mean = %.2f, want %.2f", rec.MeanHz, report.Mean)
	}
	if rec.MinFrequency != DefaultMinFrequency || rec.MaxFrequency != DefaultMaxFrequency {
		t.Errorf("stored bounds = (%v, %v), want defaults", rec.MinFrequency, rec.MaxFrequency)
	}
	if rec.DurationMs < 995 || rec.DurationMs > 1005 {
		t.Errorf("duration = %d ms, want ~1000", rec.DurationMs)
	}

	if err := svc.DeleteReport(id); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if _, err := svc.GetReport(id); err == nil {
		t.Fatal("expected error fetching deleted report")
	}
}
