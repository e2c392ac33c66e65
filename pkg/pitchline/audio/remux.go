package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// WAVRemuxer rewrites a WAV stream into its canonical minimal form:
// RIFF header, PCM fmt chunk, data chunk, corrected sizes. Auxiliary
// chunks (LIST-INFO metadata, cue points, padding) are dropped and the
// sample payload is copied through untouched. Duration-bearing metadata
// can therefore change; callers opt in explicitly.
type WAVRemuxer struct{}

// NewWAVRemuxer returns a WAV container remuxer.
func NewWAVRemuxer() *WAVRemuxer { return &WAVRemuxer{} }

// Remux walks the RIFF chunk list of encoded and emits the optimized
// stream. Fails when the input is not a WAVE container or lacks the
// fmt/data chunks.
func (r *WAVRemuxer) Remux(encoded []byte) ([]byte, error) {
	parser := riff.New(bytes.NewReader(encoded))
	if err := parser.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("parsing RIFF headers: %w", err)
	}
	if string(parser.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("not a WAVE container: format %q", parser.Format)
	}

	var fmtChunk, dataChunk []byte
	for fmtChunk == nil || dataChunk == nil {
		chunk, err := parser.NextChunk()
		if err != nil {
			break // chunk list exhausted
		}
		switch string(chunk.ID[:]) {
		case "fmt ":
			fmtChunk = make([]byte, chunk.Size)
			if _, err := io.ReadFull(chunk, fmtChunk); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}
		case "data":
			dataChunk = make([]byte, chunk.Size)
			if _, err := io.ReadFull(chunk, dataChunk); err != nil {
				return nil, fmt.Errorf("reading data chunk: %w", err)
			}
		default:
			chunk.Done()
		}
	}
	if fmtChunk == nil {
		return nil, errors.New("no fmt chunk in stream")
	}
	if dataChunk == nil {
		return nil, errors.New("no data chunk in stream")
	}

	// Plain PCM needs only the 16 canonical fmt bytes; any extension
	// block is dead weight.
	if len(fmtChunk) > 16 && binary.LittleEndian.Uint16(fmtChunk[:2]) == 1 {
		fmtChunk = fmtChunk[:16]
	}

	var out bytes.Buffer
	riffSize := 4 + chunkLen(fmtChunk) + chunkLen(dataChunk)
	out.WriteString("RIFF")
	writeUint32(&out, uint32(riffSize))
	out.WriteString("WAVE")
	writeChunk(&out, "fmt ", fmtChunk)
	writeChunk(&out, "data", dataChunk)
	return out.Bytes(), nil
}

// chunkLen is the on-disk footprint of a chunk: header, body, and the
// pad byte RIFF requires after odd-sized bodies.
func chunkLen(body []byte) int {
	n := 8 + len(body)
	if len(body)%2 != 0 {
		n++
	}
	return n
}

func writeChunk(out *bytes.Buffer, id string, body []byte) {
	out.WriteString(id)
	writeUint32(out, uint32(len(body)))
	out.Write(body)
	if len(body)%2 != 0 {
		out.WriteByte(0)
	}
}

func writeUint32(out *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	out.Write(b[:])
}
