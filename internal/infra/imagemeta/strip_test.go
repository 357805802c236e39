package imagemeta_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/infra/imagemeta"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	return img
}

func pngChunk(typ string, data []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

// pngWithText encodes a PNG and inserts tEXt and tIME chunks after IHDR.
func pngWithText(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	raw := buf.Bytes()

	ihdrEnd := 8 + 12 + 13
	var out []byte
	out = append(out, raw[:ihdrEnd]...)
	out = append(out, pngChunk("tEXt", []byte("Author\x00someone"))...)
	out = append(out, pngChunk("tIME", []byte{0x07, 0xea, 1, 2, 3, 4, 5})...)
	out = append(out, raw[ihdrEnd:]...)
	return out
}

// jpegWithExif encodes a JPEG and inserts APP1 (EXIF) and COM segments after SOI.
func jpegWithExif(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(), &jpeg.Options{Quality: 80}))
	raw := buf.Bytes()

	exif := append([]byte("Exif\x00\x00"), bytes.Repeat([]byte{0xab}, 64)...)
	var out []byte
	out = append(out, raw[:2]...)
	out = append(out, 0xff, 0xe1, byte((len(exif)+2)>>8), byte(len(exif)+2))
	out = append(out, exif...)
	comment := []byte("generated")
	out = append(out, 0xff, 0xfe, 0x00, byte(len(comment)+2))
	out = append(out, comment...)
	out = append(out, raw[2:]...)
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    imagemeta.Kind
		wantErr error
	}{
		{name: "png", data: []byte("\x89PNG\r\n\x1a\nrest"), want: imagemeta.KindPNG},
		{name: "jpeg", data: []byte{0xff, 0xd8, 0xff, 0xe0}, want: imagemeta.KindJPEG},
		{name: "gif", data: []byte("GIF89a"), wantErr: imagemeta.ErrUnsupportedFormat},
		{name: "empty", data: nil, wantErr: imagemeta.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := imagemeta.Detect(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrip_PNGRemovesTextChunks(t *testing.T) {
	// Arrange
	data := pngWithText(t)
	require.True(t, bytes.Contains(data, []byte("tEXt")))

	// Act
	cleaned, kind, err := imagemeta.Strip(data)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, imagemeta.KindPNG, kind)
	assert.False(t, bytes.Contains(cleaned, []byte("tEXt")))
	assert.False(t, bytes.Contains(cleaned, []byte("tIME")))
	assert.Less(t, len(cleaned), len(data))

	_, err = png.Decode(bytes.NewReader(cleaned))
	assert.NoError(t, err, "stripped PNG must still decode")
}

func TestStrip_JPEGRemovesExifAndComments(t *testing.T) {
	data := jpegWithExif(t)

	cleaned, kind, err := imagemeta.Strip(data)

	require.NoError(t, err)
	assert.Equal(t, imagemeta.KindJPEG, kind)
	assert.False(t, bytes.Contains(cleaned, []byte("Exif\x00\x00")))
	assert.False(t, bytes.Contains(cleaned, []byte("generated")))
	assert.Equal(t, []byte{0xff, 0xd8}, cleaned[:2])

	_, err = jpeg.Decode(bytes.NewReader(cleaned))
	assert.NoError(t, err, "stripped JPEG must still decode")
}

func TestStrip_CleanImageIsUnchangedInSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	cleaned, _, err := imagemeta.Strip(buf.Bytes())

	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), cleaned)
}

func TestStrip_Truncated(t *testing.T) {
	data := pngWithText(t)
	_, _, err := imagemeta.Strip(data[:40])
	assert.ErrorIs(t, err, imagemeta.ErrTruncated)

	jpg := []byte{0xff, 0xd8, 0xff, 0xe1, 0x01, 0x00, 0x00}
	_, _, err = imagemeta.Strip(jpg)
	assert.ErrorIs(t, err, imagemeta.ErrTruncated)
}

func TestStrip_Unsupported(t *testing.T) {
	_, _, err := imagemeta.Strip([]byte("GIF89a...."))
	assert.ErrorIs(t, err, imagemeta.ErrUnsupportedFormat)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "image_clean.png"), imagemeta.DefaultOutputPath(filepath.Join("out", "image.png")))
	assert.Equal(t, "photo_clean.jpeg", imagemeta.DefaultOutputPath("photo.jpeg"))
	assert.Equal(t, "noext_clean", imagemeta.DefaultOutputPath("noext"))
}

func TestStripFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "infographic.png")
	data := pngWithText(t)
	require.NoError(t, os.WriteFile(in, data, 0o644))

	report, err := imagemeta.StripFile(in, "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "infographic_clean.png"), report.Output)
	assert.Equal(t, imagemeta.KindPNG, report.Kind)
	assert.Equal(t, len(data), report.OriginalSize)
	assert.Positive(t, report.Saved())
	assert.Greater(t, report.SavedPercent(), 0.0)

	written, err := os.ReadFile(report.Output)
	require.NoError(t, err)
	assert.Equal(t, report.CleanedSize, len(written))
}

func TestStripFile_MissingInput(t *testing.T) {
	_, err := imagemeta.StripFile(filepath.Join(t.TempDir(), "missing.png"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
