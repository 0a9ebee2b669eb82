// Package output renders finished comparison reports. The summary and
// JSON formatters write to a stream; the HTML reporter produces a
// self-contained page with embedded difference previews.
package output

import (
	"io"

	"github.com/sdejongh/semdiff/pkg/models"
)

// Formatter defines the interface for report rendering
// Implementations include human-readable summary and JSON formatters
type Formatter interface {
	// Write renders a finished report to the writer
	Write(w io.Writer, report *models.Report) error

	// Name returns the formatter name
	Name() string
}

// ForFormat returns the formatter for a configured output format name,
// defaulting to the summary formatter
func ForFormat(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewSummaryFormatter()
	}
}

var statusGlyphs = map[models.NodeStatus]string{
	models.StatusModified:     "~",
	models.StatusAdded:        "+",
	models.StatusRemoved:      "-",
	models.StatusTypeMismatch: "!",
	models.StatusError:        "E",
}
