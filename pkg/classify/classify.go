// Package classify selects which comparator family applies to a file.
// Classification inspects leading bytes (magic numbers) first, falls back
// to the extension hint, then to UTF-8 validity, and finally defaults to
// binary. It is a pure function of the content and never fails: unknown
// content always classifies as binary.
package classify

import (
	"encoding/json"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sdejongh/semdiff/pkg/models"
)

// HeadSize is the number of leading bytes the classifier needs to inspect.
// Callers holding the full content can pass it as-is.
const HeadSize = 3072

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".tif": true, ".tiff": true,
}

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true, ".ogg": true,
	".opus": true, ".aac": true, ".m4a": true,
}

var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".csv": true, ".tsv": true,
	".xml": true, ".yaml": true, ".yml": true, ".toml": true,
	".html": true, ".htm": true, ".css": true, ".js": true,
	".log": true, ".ini": true, ".sql": true, ".sh": true,
}

// Classify determines the content class of a file from its name and
// content. The name is only a hint; content wins when they disagree.
func Classify(name string, content []byte) models.ContentClass {
	ext := strings.ToLower(path.Ext(name))

	// Magic numbers first
	mt := mimetype.Detect(content)
	if class, ok := classFromMIME(mt, ext, content); ok {
		return class
	}

	// Extension hint second
	switch {
	case imageExtensions[ext]:
		return models.ClassImage
	case audioExtensions[ext]:
		return models.ClassAudio
	case ext == ".json" && json.Valid(content):
		return models.ClassJSON
	case textExtensions[ext] && isPlausibleText(content):
		return models.ClassText
	}

	// UTF-8 validity third
	if isPlausibleText(content) {
		return models.ClassText
	}

	return models.ClassBinary
}

func classFromMIME(mt *mimetype.MIME, ext string, content []byte) (models.ContentClass, bool) {
	mime := mt.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	switch {
	case mime == "application/json" || strings.HasSuffix(mime, "+json"):
		return models.ClassJSON, true
	case strings.HasPrefix(mime, "image/"):
		return models.ClassImage, true
	case strings.HasPrefix(mime, "audio/"), strings.HasPrefix(mime, "video/"):
		return models.ClassAudio, true
	case strings.HasPrefix(mime, "text/"):
		// Sniffers report JSON bodies under text/plain when they start
		// with a scalar; honor the extension in that case
		if ext == ".json" && json.Valid(content) {
			return models.ClassJSON, true
		}
		return models.ClassText, true
	}
	return "", false
}

// isPlausibleText reports whether content is valid UTF-8 without control
// characters other than newline, carriage return, and tab.
func isPlausibleText(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	for _, r := range string(content) {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}
