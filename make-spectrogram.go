package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"

	"github.com/eligwz/spectrogram"

	paudio "github.com/pitchline/pitchline/pkg/pitchline/audio"
)

// Debug tool: renders a spectrogram of a WAV file after the same mono
// reduction the pipeline performs, to eyeball what the estimator sees.
func main() {
	inPath := flag.String("in", "", "Input WAV file")
	outPath := flag.String("out", "spectrogram.png", "Output PNG file")
	width := flag.Int("width", 2048, "Image width in pixels")
	height := flag.Int("height", 512, "Image height in pixels (frequency bins)")
	flag.Parse()

	if *inPath == "" {
		fmt.Println("Usage: make-spectrogram -in <file.wav> [-out <file.png>]")
		os.Exit(1)
	}

	src, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("reading %s: %v", *inPath, err)
	}

	buf, err := paudio.NewWAVDecoder().Decode(context.Background(), src)
	if err != nil {
		log.Fatalf("decoding %s: %v", *inPath, err)
	}
	mono, err := paudio.DownmixToMono(buf)
	if err != nil {
		log.Fatalf("reducing %s: %v", *inPath, err)
	}

	fmt.Printf("Read %d samples at %d Hz\n", len(mono.Samples), mono.SampleRate)

	samples := make([]float64, len(mono.Samples))
	for i, s := range mono.Samples {
		samples[i] = float64(s)
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, *width, *height))

	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT path, linear magnitude.
	spectrogram.Drawfft(
		img,
		samples,
		uint32(mono.SampleRate),
		uint32(*height),
		false, // RECTANGLE
		false, // DFT
		true,  // MAG
		false, // LOG10
	)

	if err := spectrogram.SavePng(img, *outPath); err != nil {
		log.Fatalf("saving %s: %v", *outPath, err)
	}

	fmt.Printf("Saved spectrogram to %s\n", *outPath)
}
