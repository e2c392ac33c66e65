package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pitchline/pitchline/pkg/logger"
	"github.com/pitchline/pitchline/pkg/pitchline"
)

// Global flags
var (
	dbPath  string
	tempDir string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("PITCHLINE_DB_PATH", "pitchline.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("PITCHLINE_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService() (pitchline.Service, error) {
	return pitchline.NewService(
		pitchline.WithDBPath(dbPath),
		pitchline.WithTempDir(tempDir),
	)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze()
	case "compose":
		handleCompose()
	case "fetch":
		handleFetch()
	case "list":
		handleList()
	case "show":
		handleShow()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
         _ __       _     ___
   ___  (_) /______/ /   / (_)__  ___
  / _ \/ / __/ __/ _ \ / / / _ \/ -_)
 / .__/_/\__/\__/_//_//_/_/_//_/\__/
/_/
         Pitch Analysis CLI Tool
`
	fmt.Println(banner)
}

func handleAnalyze() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: pitchline analyze <audio_file> [--title <title>] [--min <hz>] [--max <hz>]")
		os.Exit(1)
	}

	audioPath := os.Args[2]

	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	title := analyzeCmd.String("title", "", "Title to store with the report (default: file name)")
	minFreq := analyzeCmd.Float64("min", float64(pitchline.DefaultMinFrequency), "Lower pitch bound in Hz (exclusive)")
	maxFreq := analyzeCmd.Float64("max", float64(pitchline.DefaultMaxFrequency), "Upper pitch bound in Hz (exclusive)")
	analyzeCmd.Parse(os.Args[3:])

	fmt.Println("\n🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🎵 Analyzing audio file...")
	fmt.Println("   This may take a few moments for large files")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	id, report, err := svc.AnalyzeFile(ctx, audioPath, *title, pitchline.AnalyzeOptions{
		MinFrequency: float32(*minFreq),
		MaxFrequency: float32(*maxFreq),
	})
	if err != nil {
		fmt.Printf("\n❌ Failed to analyze file: %v\n", err)
		log.Errorf("AnalyzeFile failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Analysis complete!")
	fmt.Printf("   Report ID:   %s\n", id)
	printReport(report)
	log.Infof("Successfully analyzed %s, report %s", audioPath, id)
}

func handleCompose() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: pitchline compose <audio_file> --out <output.wav> [--quality <q>] [--rate <hz>] [--remux] [--report]")
		os.Exit(1)
	}

	audioPath := os.Args[2]

	composeCmd := flag.NewFlagSet("compose", flag.ExitOnError)
	outPath := composeCmd.String("out", "", "Output file path (required)")
	quality := composeCmd.Float64("quality", 0, "Target encoding quality in [-0.2, 2.0]")
	outRate := composeCmd.Int("rate", 0, "Output sample rate (0 keeps the source rate)")
	remux := composeCmd.Bool("remux", false, "Rewrite the container into its canonical minimal form")
	withReport := composeCmd.Bool("report", false, "Also run pitch analysis and print the report")
	composeCmd.Parse(os.Args[3:])

	if *outPath == "" {
		fmt.Println("Error: --out is required")
		os.Exit(1)
	}

	src, err := os.ReadFile(audioPath)
	if err != nil {
		fmt.Printf("❌ Failed to read input: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("🎛️  Composing mono output...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	copts := pitchline.ComposeOptions{
		TargetQuality:    float32(*quality),
		OutputSampleRate: *outRate,
		Remux:            *remux,
	}

	var out []byte
	var report *pitchline.PitchReport
	if *withReport {
		out, report, _, err = svc.ComposeWithReport(ctx, src, pitchline.AnalyzeOptions{}, copts)
	} else {
		out, err = svc.Compose(ctx, src, copts)
	}
	if err != nil {
		fmt.Printf("\n❌ Failed to compose: %v\n", err)
		log.Errorf("Compose failed: %v", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		fmt.Printf("❌ Failed to write output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Compose complete!")
	fmt.Printf("   Output: %s (%s)\n", *outPath, humanize.Bytes(uint64(len(out))))
	if report != nil {
		printReport(report)
	}
	log.Infof("Composed %s -> %s (%d bytes)", audioPath, *outPath, len(out))
}

func handleFetch() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: pitchline fetch <youtube_url>")
		os.Exit(1)
	}

	url := os.Args[2]

	fmt.Println("\n🔧 Initializing service...")
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("📥 Downloading audio from YouTube...")
	fmt.Println("   This may take a few moments depending on video length")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	path, err := svc.FetchYouTubeAudio(ctx, url)
	if err != nil {
		fmt.Printf("\n❌ Failed to fetch audio: %v\n", err)
		log.Errorf("FetchYouTubeAudio failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Download complete!")
	fmt.Printf("   Saved to: %s\n", path)
	log.Infof("Fetched %s -> %s", url, path)
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	reports, err := svc.ListReports()
	if err != nil {
		fmt.Printf("❌ Failed to list reports: %v\n", err)
		log.Errorf("ListReports failed: %v", err)
		os.Exit(1)
	}

	if len(reports) == 0 {
		fmt.Println("\n📭 No reports in database")
		log.Infof("No reports in database")
		return
	}

	fmt.Printf("\n📚 Found %d report(s):\n\n", len(reports))
	for i, rec := range reports {
		fmt.Printf("%d. %q (ID: %s)\n", i+1, rec.Title, rec.ID)
		fmt.Printf("   Mean: %.1f Hz | Median: %.1f Hz | Chunks used: %.1f%%\n",
			rec.MeanHz, rec.MedianHz, rec.ChunksUsed)
		fmt.Printf("   Analyzed %s\n", humanize.Time(rec.CreatedAt))
		fmt.Println()
	}
	log.Infof("Listed %d reports", len(reports))
}

func handleShow() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: pitchline show <report_id>")
		os.Exit(1)
	}

	id := os.Args[2]

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	rec, err := svc.GetReport(id)
	if err != nil {
		fmt.Printf("❌ Report not found (ID: %s)\n", id)
		log.Warnf("Report %s not found: %v", id, err)
		os.Exit(1)
	}

	duration := rec.DurationMs / 1000
	fmt.Printf("\n📄 Report %s\n", rec.ID)
	fmt.Printf("   Title:       %s\n", rec.Title)
	fmt.Printf("   Source:      %s\n", rec.Source)
	fmt.Printf("   Duration:    %d:%02d\n", duration/60, duration%60)
	fmt.Printf("   Bounds:      (%.0f, %.0f) Hz\n", rec.MinFrequency, rec.MaxFrequency)
	fmt.Printf("   Mean:        %.2f Hz\n", rec.MeanHz)
	fmt.Printf("   Median:      %.2f Hz\n", rec.MedianHz)
	fmt.Printf("   Range:       %.2f - %.2f Hz\n", rec.LowestHz, rec.HighestHz)
	fmt.Printf("   Chunks used: %.1f%%\n", rec.ChunksUsed)
	fmt.Printf("   Analyzed:    %s\n", humanize.Time(rec.CreatedAt))
	log.Infof("Showed report %s", rec.ID)
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: pitchline delete <report_id>")
		os.Exit(1)
	}

	id := os.Args[2]

	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		log.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	rec, err := svc.GetReport(id)
	if err != nil {
		fmt.Printf("❌ Report not found (ID: %s)\n", id)
		log.Warnf("Report %s not found: %v", id, err)
		os.Exit(1)
	}

	if err := svc.DeleteReport(id); err != nil {
		fmt.Printf("❌ Failed to delete report: %v\n", err)
		log.Errorf("DeleteReport failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Successfully deleted report:\n")
	fmt.Printf("   ID:    %s\n", rec.ID)
	fmt.Printf("   Title: %s\n", rec.Title)
	log.Infof("Deleted report %s (%q)", rec.ID, rec.Title)
}

func printReport(report *pitchline.PitchReport) {
	fmt.Printf("   Mean:        %.2f Hz\n", report.Mean)
	fmt.Printf("   Median:      %.2f Hz\n", report.Median)
	fmt.Printf("   Range:       %.2f - %.2f Hz\n", report.Lowest, report.Highest)
	fmt.Printf("   Chunks used: %.1f%%\n", report.ChunksUsed)
}

func printUsage() {
	fmt.Println("pitchline - Pitch Analysis CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite database (env: PITCHLINE_DB_PATH, default: pitchline.sqlite3)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: PITCHLINE_TEMP_DIR, default: /tmp)")
	fmt.Println("\nUsage:")
	fmt.Println("  pitchline [global-options] analyze <audio_file> [--title <title>] [--min <hz>] [--max <hz>]")
	fmt.Println("  pitchline [global-options] compose <audio_file> --out <output.wav> [--quality <q>] [--rate <hz>] [--remux] [--report]")
	fmt.Println("  pitchline [global-options] fetch <youtube_url>")
	fmt.Println("  pitchline [global-options] list")
	fmt.Println("  pitchline [global-options] show <report_id>")
	fmt.Println("  pitchline [global-options] delete <report_id>")
	fmt.Println("\nExamples:")
	fmt.Println("  # Analyze a recording and store the report")
	fmt.Println("  pitchline --db mydb.sqlite3 analyze voice.mp3 --title \"Morning take\"")
	fmt.Println()
	fmt.Println("  # Narrow the pitch bounds for a speech recording")
	fmt.Println("  pitchline analyze interview.wav --min 75 --max 300")
	fmt.Println()
	fmt.Println("  # Downmix to mono at 22.05 kHz with a tight container")
	fmt.Println("  pitchline compose song.mp3 --out song-mono.wav --rate 22050 --remux")
	fmt.Println()
	fmt.Println("  # Fetch a YouTube video's audio track for analysis")
	fmt.Println("  pitchline fetch \"https://youtube.com/watch?v=dQw4w9WgXcQ\"")
}
