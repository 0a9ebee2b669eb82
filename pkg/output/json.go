package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/semdiff/pkg/models"
)

// JSONFormatter renders the full report as one JSON document for
// automation and scripting
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

// JSONReportData represents the top-level report document
type JSONReportData struct {
	RunID        string          `json:"run_id"`
	ExpectedRoot string          `json:"expected_root"`
	ActualRoot   string          `json:"actual_root"`
	Status       string          `json:"status"`
	ExitCode     int             `json:"exit_code"`
	StartTime    time.Time       `json:"start_time"`
	Duration     string          `json:"duration"`
	DurationMs   int64           `json:"duration_ms"`
	Stats        JSONStatsData   `json:"stats"`
	Tree         *JSONNodeData   `json:"tree,omitempty"`
	Errors       []JSONErrorData `json:"errors,omitempty"`
}

// JSONStatsData represents the aggregate counters
type JSONStatsData struct {
	FilesScanned int `json:"files_scanned"`
	DirsScanned  int `json:"dirs_scanned"`
	Equal        int `json:"equal"`
	Modified     int `json:"modified"`
	Added        int `json:"added"`
	Removed      int `json:"removed"`
	TypeMismatch int `json:"type_mismatch"`
	Errored      int `json:"errored"`
	Differences  int `json:"differences"`
}

// JSONNodeData mirrors one node of the result tree
type JSONNodeData struct {
	Path     string          `json:"path"`
	Kind     string          `json:"kind"`
	Status   string          `json:"status"`
	Class    string          `json:"class,omitempty"`
	Detail   *JSONDetailData `json:"detail,omitempty"`
	Error    *JSONErrorData  `json:"error,omitempty"`
	Children []*JSONNodeData `json:"children,omitempty"`
}

// JSONDetailData carries the class-specific diagnostics of one compared
// file pair
type JSONDetailData struct {
	Class string `json:"class"`
	Equal bool   `json:"equal"`

	Text   *models.TextDetail   `json:"text,omitempty"`
	JSON   *models.JSONDetail   `json:"json,omitempty"`
	Binary *models.BinaryDetail `json:"binary,omitempty"`
	Image  *models.ImageDetail  `json:"image,omitempty"`
	Audio  *models.AudioDetail  `json:"audio,omitempty"`
}

// JSONErrorData represents one per-entry failure
type JSONErrorData struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Side    string `json:"side,omitempty"`
	Message string `json:"message"`
}

// Write renders the report
func (f *JSONFormatter) Write(w io.Writer, report *models.Report) error {
	doc := JSONReportData{
		RunID:        report.RunID,
		ExpectedRoot: report.ExpectedRoot,
		ActualRoot:   report.ActualRoot,
		Status:       string(report.Status),
		ExitCode:     report.Status.ExitCode(),
		StartTime:    report.StartTime,
		Duration:     report.Duration.String(),
		DurationMs:   report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesScanned: report.Stats.FilesScanned,
			DirsScanned:  report.Stats.DirsScanned,
			Equal:        report.Stats.Equal,
			Modified:     report.Stats.Modified,
			Added:        report.Stats.Added,
			Removed:      report.Stats.Removed,
			TypeMismatch: report.Stats.TypeMismatch,
			Errored:      report.Stats.Errored,
			Differences:  report.Stats.Differences(),
		},
		Tree: nodeData(report.Root),
	}
	for _, e := range report.Errors {
		doc.Errors = append(doc.Errors, errorData(e))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func nodeData(n *models.DiffNode) *JSONNodeData {
	if n == nil {
		return nil
	}
	out := &JSONNodeData{
		Path:   n.Path,
		Kind:   string(n.Kind),
		Status: string(n.Status),
		Class:  string(n.Class),
	}
	if n.Detail != nil {
		out.Detail = &JSONDetailData{
			Class:  string(n.Detail.Class),
			Equal:  n.Detail.Equal,
			Text:   n.Detail.Text,
			JSON:   n.Detail.JSON,
			Binary: n.Detail.Binary,
			Image:  n.Detail.Image,
			Audio:  n.Detail.Audio,
		}
	}
	if n.Err != nil {
		e := errorData(n.Err)
		out.Error = &e
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, nodeData(child))
	}
	return out
}

func errorData(e *models.CompareError) JSONErrorData {
	out := JSONErrorData{
		Path:    e.Path,
		Kind:    string(e.Kind),
		Side:    string(e.Side),
		Message: e.Error(),
	}
	return out
}
