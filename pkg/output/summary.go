package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/semdiff/pkg/models"
)

// SummaryFormatter renders a human-readable run summary: every
// non-equal path with a one-line explanation, the error section, and
// the aggregate counters.
type SummaryFormatter struct{}

// NewSummaryFormatter creates a new human-readable formatter
func NewSummaryFormatter() *SummaryFormatter {
	return &SummaryFormatter{}
}

// Name returns the formatter name
func (f *SummaryFormatter) Name() string {
	return "summary"
}

// Write renders the report
func (f *SummaryFormatter) Write(w io.Writer, report *models.Report) error {
	fmt.Fprintf(w, "Comparing %s\n", report.ExpectedRoot)
	fmt.Fprintf(w, "  against %s\n", report.ActualRoot)
	fmt.Fprintf(w, "\n")

	if report.Root != nil && report.Stats.Differences() > 0 {
		fmt.Fprintf(w, "Differences:\n")
		report.Root.Walk(func(n *models.DiffNode) {
			if n.Kind != models.KindFile || n.Status == models.StatusEqual || n.Status == models.StatusError {
				return
			}
			fmt.Fprintf(w, "  %s %s%s\n", statusGlyphs[n.Status], n.Path, describeNode(n))
		})
		fmt.Fprintf(w, "\n")
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "Errors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  E %v\n", e)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:        %d files, %d dirs\n", report.Stats.FilesScanned, report.Stats.DirsScanned)
	fmt.Fprintf(w, "  Equal:          %d\n", report.Stats.Equal)
	fmt.Fprintf(w, "  Modified:       %d\n", report.Stats.Modified)
	fmt.Fprintf(w, "  Added:          %d\n", report.Stats.Added)
	fmt.Fprintf(w, "  Removed:        %d\n", report.Stats.Removed)
	fmt.Fprintf(w, "  Type mismatch:  %d\n", report.Stats.TypeMismatch)
	fmt.Fprintf(w, "  Errored:        %d\n", report.Stats.Errored)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Result: %s in %s\n", report.Status, report.Duration.Round(time.Millisecond))
	return nil
}

// describeNode produces the one-line explanation appended to a
// difference entry
func describeNode(n *models.DiffNode) string {
	if n.Detail == nil {
		return ""
	}
	switch {
	case n.Detail.Text != nil:
		d := n.Detail.Text
		changed := 0
		for _, op := range d.Ops {
			if op.Tag != models.OpEqual {
				changed++
			}
		}
		if changed == 0 && d.ExpectedTrailingNewline != d.ActualTrailingNewline {
			return " (text: trailing newline differs)"
		}
		return fmt.Sprintf(" (text: %d edit%s)", changed, plural(changed))
	case n.Detail.JSON != nil:
		count := len(n.Detail.JSON.Diffs)
		return fmt.Sprintf(" (json: %d divergence%s, first at %s)", count, plural(count), n.Detail.JSON.Diffs[0].Path)
	case n.Detail.Binary != nil:
		d := n.Detail.Binary
		if d.StrictPrefix {
			return fmt.Sprintf(" (binary: %d vs %d bytes, common prefix)", d.ExpectedLength, d.ActualLength)
		}
		return fmt.Sprintf(" (binary: first difference at offset %d)", d.FirstDiffOffset)
	case n.Detail.Image != nil:
		d := n.Detail.Image
		if !d.DimensionsMatch {
			return fmt.Sprintf(" (image: %dx%d vs %dx%d)", d.ExpectedWidth, d.ExpectedHeight, d.ActualWidth, d.ActualHeight)
		}
		return fmt.Sprintf(" (image: %.2f%% of pixels differ, max distance %.4f)", d.DiffRatio*100, d.MaxDistance)
	case n.Detail.Audio != nil:
		d := n.Detail.Audio
		return fmt.Sprintf(" (audio: shift %+.3fs, loudness delta %.2f dB, %.2f%% of bins differ)",
			d.ShiftSeconds, d.LoudnessDeltaDB, d.DiffBinRatio*100)
	}
	return ""
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
