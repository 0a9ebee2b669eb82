package classify

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/sdejongh/semdiff/pkg/models"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func wavBytes(t *testing.T) []byte {
	t.Helper()

	// Minimal RIFF/WAVE header with an empty data chunk
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))     // mono
	binary.Write(&buf, binary.LittleEndian, uint32(8000))  // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(16000)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))     // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))    // bits
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	return buf.Bytes()
}

func TestClassifyByMagicNumbers(t *testing.T) {
	// Deliberately wrong extensions: content wins over the name
	if got := Classify("picture.dat", pngBytes(t)); got != models.ClassImage {
		t.Errorf("png bytes classified as %q, want image", got)
	}
	if got := Classify("clip.bin", wavBytes(t)); got != models.ClassAudio {
		t.Errorf("wav bytes classified as %q, want audio", got)
	}
}

func TestClassifyJSON(t *testing.T) {
	if got := Classify("data.json", []byte(`{"a": 1}`)); got != models.ClassJSON {
		t.Errorf("json object classified as %q, want json", got)
	}
	// A bare scalar is valid JSON but only the extension reveals intent
	if got := Classify("value.json", []byte(`42`)); got != models.ClassJSON {
		t.Errorf("json scalar classified as %q, want json", got)
	}
	// Same content without the hint is plain text
	if got := Classify("value.txt", []byte(`42`)); got != models.ClassText {
		t.Errorf("bare number classified as %q, want text", got)
	}
}

func TestClassifyText(t *testing.T) {
	if got := Classify("readme.md", []byte("# Title\n\nbody text\n")); got != models.ClassText {
		t.Errorf("markdown classified as %q, want text", got)
	}
	if got := Classify("notes", []byte("plain utf-8 with tabs\tand newlines\n")); got != models.ClassText {
		t.Errorf("extensionless text classified as %q, want text", got)
	}
}

func TestClassifyBinaryFallback(t *testing.T) {
	// Invalid UTF-8 with no known signature
	blob := []byte{0x00, 0x01, 0xFF, 0xFE, 0x80, 0x81}
	if got := Classify("mystery", blob); got != models.ClassBinary {
		t.Errorf("unknown bytes classified as %q, want binary", got)
	}
	// NUL bytes make otherwise-ASCII content binary
	if got := Classify("weird.txt", []byte("text\x00with nul")); got != models.ClassBinary {
		t.Errorf("nul-containing content classified as %q, want binary", got)
	}
}

func TestClassifyNeverPanicsOnEmpty(t *testing.T) {
	if got := Classify("empty", nil); got != models.ClassText {
		// Empty content is trivially valid UTF-8
		t.Errorf("empty content classified as %q, want text", got)
	}
}
