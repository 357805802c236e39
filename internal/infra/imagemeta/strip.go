// Package imagemeta removes metadata (EXIF, XMP, IPTC, text chunks,
// comments) from JPEG and PNG files while keeping the pixel data intact.
package imagemeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind is a supported image format.
type Kind string

const (
	KindJPEG Kind = "jpeg"
	KindPNG  Kind = "png"
)

// Sentinel errors.
var (
	// ErrUnsupportedFormat indicates the data is neither JPEG nor PNG.
	ErrUnsupportedFormat = errors.New("unsupported image format (only JPEG and PNG supported)")

	// ErrTruncated indicates a segment or chunk runs past the end of the data.
	ErrTruncated = errors.New("image data truncated")
)

var (
	jpegSOI      = []byte{0xff, 0xd8}
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
)

// JPEG markers kept: SOF0-3, DHT, DQT, DRI, SOS and APP0 (JFIF).
var jpegKeep = map[byte]bool{
	0xc0: true, 0xc1: true, 0xc2: true, 0xc3: true,
	0xc4: true, 0xdb: true, 0xdd: true, 0xda: true,
	0xe0: true,
}

// PNG chunks kept; everything else (tEXt, zTXt, iTXt, tIME, eXIf, ...) is dropped.
var pngKeep = map[string]bool{
	"IHDR": true, "IDAT": true, "PLTE": true, "tRNS": true, "IEND": true,
	"pHYs": true, "gAMA": true, "cHRM": true, "sRGB": true,
}

// Detect reports the format of data from its magic bytes.
func Detect(data []byte) (Kind, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return KindPNG, nil
	case bytes.HasPrefix(data, jpegSOI):
		return KindJPEG, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Strip returns a copy of data without metadata segments.
func Strip(data []byte) ([]byte, Kind, error) {
	kind, err := Detect(data)
	if err != nil {
		return nil, "", err
	}
	var out []byte
	switch kind {
	case KindJPEG:
		out, err = stripJPEG(data)
	case KindPNG:
		out, err = stripPNG(data)
	}
	if err != nil {
		return nil, kind, err
	}
	return out, kind, nil
}

func stripJPEG(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	out = append(out, jpegSOI...)

	pos := 2
	for pos < len(data) {
		if data[pos] != 0xff {
			break
		}
		if pos+1 >= len(data) {
			return nil, fmt.Errorf("%w: marker at offset %d", ErrTruncated, pos)
		}
		marker := data[pos+1]
		pos += 2

		// EOI
		if marker == 0xd9 {
			out = append(out, 0xff, 0xd9)
			break
		}
		// standalone markers carry no length
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			out = append(out, 0xff, marker)
			continue
		}

		if pos+2 > len(data) {
			return nil, fmt.Errorf("%w: segment length at offset %d", ErrTruncated, pos)
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 || pos+length > len(data) {
			return nil, fmt.Errorf("%w: segment 0x%02x of %d bytes at offset %d", ErrTruncated, marker, length, pos)
		}

		if jpegKeep[marker] {
			out = append(out, 0xff, marker)
			out = append(out, data[pos:pos+length]...)
		}
		pos += length

		// entropy-coded scan data follows SOS; copy the rest verbatim
		if marker == 0xda {
			out = append(out, data[pos:]...)
			break
		}
	}
	return out, nil
}

func stripPNG(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	out = append(out, pngSignature...)

	pos := len(pngSignature)
	sawEnd := false
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkType := string(data[pos+4 : pos+8])
		end := pos + 12 + length // length + type + data + CRC
		if length < 0 || end > len(data) {
			return nil, fmt.Errorf("%w: chunk %q of %d bytes at offset %d", ErrTruncated, chunkType, length, pos)
		}

		if pngKeep[chunkType] {
			out = append(out, data[pos:end]...)
		}
		pos = end

		if chunkType == "IEND" {
			sawEnd = true
			break
		}
	}
	if !sawEnd && pos != len(data) {
		return nil, fmt.Errorf("%w: partial chunk at offset %d", ErrTruncated, pos)
	}
	return out, nil
}

// Report describes a StripFile run.
type Report struct {
	Input        string `json:"input"`
	Output       string `json:"output"`
	Kind         Kind   `json:"type"`
	OriginalSize int    `json:"originalSize"`
	CleanedSize  int    `json:"cleanedSize"`
}

// Saved returns the number of bytes removed.
func (r Report) Saved() int { return r.OriginalSize - r.CleanedSize }

// SavedPercent returns the share of the original size removed, in percent.
func (r Report) SavedPercent() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return 100 * float64(r.Saved()) / float64(r.OriginalSize)
}

// DefaultOutputPath returns input with "_clean" inserted before the extension.
//
//	DefaultOutputPath("out/image.png") // "out/image_clean.png"
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_clean" + ext
}

// StripFile strips input and writes the result to output, or to
// DefaultOutputPath(input) when output is empty.
func StripFile(input, output string) (Report, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return Report{}, fmt.Errorf("read image: %w", err)
	}
	if output == "" {
		output = DefaultOutputPath(input)
	}

	cleaned, kind, err := Strip(data)
	if err != nil {
		return Report{}, fmt.Errorf("strip %s: %w", input, err)
	}
	if err := os.WriteFile(output, cleaned, 0o644); err != nil {
		return Report{}, fmt.Errorf("write image: %w", err)
	}
	return Report{
		Input:        input,
		Output:       output,
		Kind:         kind,
		OriginalSize: len(data),
		CleanedSize:  len(cleaned),
	}, nil
}
