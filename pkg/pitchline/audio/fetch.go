package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/pitchline/pitchline/pkg/utils"
)

// fetchTimeout bounds a download when the caller's context carries no
// deadline.
const fetchTimeout = 3 * time.Minute

// FetchYouTubeAudio downloads the audio track of a YouTube video into
// outputDir as a WAV file and returns its path. The yt-dlp binary is
// resolved (and installed if missing) on first use.
func FetchYouTubeAudio(ctx context.Context, rawURL, outputDir string) (string, error) {
	if !utils.IsYouTubeURL(rawURL) {
		return "", fmt.Errorf("not a YouTube URL: %s", rawURL)
	}
	videoID, err := utils.ExtractYouTubeID(rawURL)
	if err != nil {
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return "", fmt.Errorf("resolving yt-dlp: %w", err)
	}

	dl := ytdlp.New().
		NoPlaylist().
		NoWarnings().
		ExtractAudio().
		AudioFormat("wav").
		Output(filepath.Join(outputDir, videoID+".%(ext)s"))

	if _, err := dl.Run(ctx, rawURL); err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w", err)
	}

	audioPath := filepath.Join(outputDir, videoID+".wav")
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("downloaded audio not found: %w", err)
	}
	return audioPath, nil
}
