package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/semdiff/pkg/models"
)

func sampleReport(t *testing.T) *models.Report {
	t.Helper()

	modified := &models.DiffNode{
		Path:   "notes.txt",
		Kind:   models.KindFile,
		Status: models.StatusModified,
		Class:  models.ClassText,
		Detail: &models.FileDetail{
			Class: models.ClassText,
			Text: &models.TextDetail{
				Ops: []models.TextOp{
					{Tag: models.OpEqual, ExpectedStart: 0, ExpectedEnd: 1, ActualStart: 0, ActualEnd: 1},
					{Tag: models.OpReplace, ExpectedStart: 1, ExpectedEnd: 2, ActualStart: 1, ActualEnd: 2},
				},
				ExpectedLines:           2,
				ActualLines:             2,
				ExpectedTrailingNewline: true,
				ActualTrailingNewline:   true,
			},
		},
	}
	added := &models.DiffNode{
		Path:   "new.bin",
		Kind:   models.KindFile,
		Status: models.StatusAdded,
	}
	equal := &models.DiffNode{
		Path:   "same.txt",
		Kind:   models.KindFile,
		Status: models.StatusEqual,
		Class:  models.ClassText,
	}
	errored := &models.DiffNode{
		Path:   "broken.png",
		Kind:   models.KindFile,
		Status: models.StatusError,
		Class:  models.ClassImage,
		Err:    models.NewCompareError(models.ErrDecode, "broken.png", models.SideActual, errFake),
	}

	root := &models.DiffNode{
		Kind:     models.KindDirectory,
		Status:   models.StatusModified,
		Children: []*models.DiffNode{errored, added, modified, equal},
	}

	report := &models.Report{
		RunID:        "test-run",
		ExpectedRoot: "/tmp/expected",
		ActualRoot:   "/tmp/actual",
		StartTime:    time.Now(),
		Stats: models.Statistics{
			FilesScanned: 4,
			DirsScanned:  1,
			Equal:        1,
			Modified:     1,
			Added:        1,
			Errored:      1,
		},
		Root:   root,
		Errors: []*models.CompareError{errored.Err},
	}
	report.Finalize()
	return report
}

var errFake = &fakeError{}

type fakeError struct{}

func (e *fakeError) Error() string { return "synthetic failure" }

func TestSummaryFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSummaryFormatter().Write(&buf, sampleReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"~ notes.txt",
		"+ new.bin",
		"broken.png",
		"Errored:        1",
		"Result: errored",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "same.txt") {
		t.Error("equal files should not appear in the difference list")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Write(&buf, sampleReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var doc JSONReportData
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.RunID != "test-run" {
		t.Errorf("run_id = %q, want %q", doc.RunID, "test-run")
	}
	if doc.Status != "errored" || doc.ExitCode != 2 {
		t.Errorf("status/exit = %s/%d, want errored/2", doc.Status, doc.ExitCode)
	}
	if doc.Stats.Differences != 2 {
		t.Errorf("differences = %d, want 2", doc.Stats.Differences)
	}
	if doc.Tree == nil || len(doc.Tree.Children) != 4 {
		t.Fatalf("tree should mirror all four children, got %+v", doc.Tree)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Kind != "decode" {
		t.Errorf("errors = %+v, want one decode error", doc.Errors)
	}

	var detail *JSONDetailData
	for _, child := range doc.Tree.Children {
		if child.Path == "notes.txt" {
			detail = child.Detail
		}
	}
	if detail == nil || detail.Text == nil || len(detail.Text.Ops) != 2 {
		t.Errorf("notes.txt should carry its text detail, got %+v", detail)
	}
}

func TestHTMLReporter(t *testing.T) {
	r, err := NewHTMLReporter()
	if err != nil {
		t.Fatalf("NewHTMLReporter failed: %v", err)
	}

	report := sampleReport(t)

	var buf bytes.Buffer
	if err := r.Write(&buf, report); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"notes.txt",
		"new.bin",
		"broken.png",
		"Comparison report",
		"/tmp/expected",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
	if strings.Contains(out, "same.txt") {
		t.Error("equal files should not get a section")
	}
}

func TestHTMLReporterEmbedsPreviews(t *testing.T) {
	r, err := NewHTMLReporter()
	if err != nil {
		t.Fatalf("NewHTMLReporter failed: %v", err)
	}

	report := sampleReport(t)
	report.Root.Children = append(report.Root.Children, &models.DiffNode{
		Path:   "pic.png",
		Kind:   models.KindFile,
		Status: models.StatusModified,
		Class:  models.ClassImage,
		Detail: &models.FileDetail{
			Class: models.ClassImage,
			Image: &models.ImageDetail{
				ExpectedWidth: 2, ExpectedHeight: 2,
				ActualWidth: 2, ActualHeight: 2,
				DimensionsMatch: true,
				DiffPixels:      1,
				TotalPixels:     4,
				DiffRatio:       0.25,
				DiffMaskPNG:     []byte{0x89, 'P', 'N', 'G'},
			},
		},
	})

	var buf bytes.Buffer
	if err := r.Write(&buf, report); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "data:image/png;base64,") {
		t.Error("image preview should be embedded as a data URI")
	}
}

func TestForFormat(t *testing.T) {
	if got := ForFormat("json").Name(); got != "json" {
		t.Errorf("ForFormat(json) = %s", got)
	}
	if got := ForFormat("summary").Name(); got != "summary" {
		t.Errorf("ForFormat(summary) = %s", got)
	}
	if got := ForFormat("bogus").Name(); got != "summary" {
		t.Errorf("unknown formats fall back to summary, got %s", got)
	}
}
