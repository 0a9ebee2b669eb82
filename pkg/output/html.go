package output

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/Masterminds/sprig/v3"

	"github.com/sdejongh/semdiff/pkg/models"
)

// HTMLReporter renders a self-contained HTML page: run summary, one
// section per differing file, and the rendered previews (image diff
// masks, waveforms, spectrogram heatmaps) embedded as data URIs.
type HTMLReporter struct {
	tmpl *template.Template
}

// NewHTMLReporter creates an HTML reporter
func NewHTMLReporter() (*HTMLReporter, error) {
	funcs := sprig.FuncMap()
	funcs["pngURI"] = pngURI
	funcs["glyph"] = func(status string) string {
		return statusGlyphs[models.NodeStatus(status)]
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLReporter{tmpl: tmpl}, nil
}

// htmlPage is the root template context
type htmlPage struct {
	Report *models.Report
	Files  []*models.DiffNode
}

// Write renders the report page
func (r *HTMLReporter) Write(w io.Writer, report *models.Report) error {
	page := htmlPage{Report: report}
	if report.Root != nil {
		report.Root.Walk(func(n *models.DiffNode) {
			if n.Kind == models.KindFile && n.Status != models.StatusEqual {
				page.Files = append(page.Files, n)
			}
		})
	}
	if err := r.tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteFile renders the report page to a file path
func (r *HTMLReporter) WriteFile(path string, report *models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return r.Write(f, report)
}

// pngURI embeds PNG bytes as a data URI; empty input yields an empty URI
// so templates can gate on it
func pngURI(data []byte) template.URL {
	if len(data) == 0 {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Comparison report {{.Report.RunID}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin: 0.5rem 0; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
code { background: #f4f4f4; padding: 0 0.2rem; }
.status-clean { color: #2a7d2a; }
.status-different { color: #b05a00; }
.status-errored, .status-fatal { color: #b00020; }
section.file { border-top: 1px solid #ddd; margin-top: 1.5rem; padding-top: 0.5rem; }
img.preview { max-width: 100%; border: 1px solid #ccc; margin: 0.25rem 0; }
</style>
</head>
<body>
<h1>Comparison report</h1>
<p>
Run <code>{{.Report.RunID}}</code>, started {{.Report.StartTime | date "2006-01-02 15:04:05"}},
finished in {{.Report.Duration}}.<br>
Expected: <code>{{.Report.ExpectedRoot}}</code><br>
Actual: <code>{{.Report.ActualRoot}}</code><br>
Result: <strong class="status-{{.Report.Status}}">{{.Report.Status | toString | title}}</strong>
</p>

<table>
<tr><th>Files</th><th>Dirs</th><th>Equal</th><th>Modified</th><th>Added</th><th>Removed</th><th>Type mismatch</th><th>Errored</th></tr>
<tr>
<td>{{.Report.Stats.FilesScanned}}</td>
<td>{{.Report.Stats.DirsScanned}}</td>
<td>{{.Report.Stats.Equal}}</td>
<td>{{.Report.Stats.Modified}}</td>
<td>{{.Report.Stats.Added}}</td>
<td>{{.Report.Stats.Removed}}</td>
<td>{{.Report.Stats.TypeMismatch}}</td>
<td>{{.Report.Stats.Errored}}</td>
</tr>
</table>

{{if .Report.Errors}}
<h2>Errors</h2>
<ul>
{{range .Report.Errors}}<li><code>{{.Path}}</code>: {{.Kind}}{{if .Side}} on {{.Side}} side{{end}}: {{.Err}}</li>
{{end}}</ul>
{{end}}

{{if .Files}}
<h2>Differences</h2>
{{range .Files}}
<section class="file">
<h3>{{glyph (toString .Status)}} <code>{{.Path}}</code> <small>({{.Status}}{{if .Class}}, {{.Class}}{{end}})</small></h3>
{{if .Detail}}
{{with .Detail.Text}}
<p>{{len .Ops}} edit operations over {{.ExpectedLines}} vs {{.ActualLines}} lines.
{{if ne .ExpectedTrailingNewline .ActualTrailingNewline}}Trailing newline presence differs.{{end}}</p>
<table>
<tr><th>Op</th><th>Expected lines</th><th>Actual lines</th></tr>
{{range .Ops}}{{if ne (toString .Tag) "equal"}}
<tr><td>{{.Tag}}</td><td>{{.ExpectedStart}}&ndash;{{.ExpectedEnd}}</td><td>{{.ActualStart}}&ndash;{{.ActualEnd}}</td></tr>
{{end}}{{end}}
</table>
{{end}}
{{with .Detail.JSON}}
<table>
<tr><th>Path</th><th>Kind</th><th>Expected</th><th>Actual</th></tr>
{{range .Diffs}}
<tr><td><code>{{.Path}}</code></td><td>{{.Kind}}</td><td><code>{{.Expected}}</code></td><td><code>{{.Actual}}</code></td></tr>
{{end}}
</table>
{{end}}
{{with .Detail.Binary}}
<p>{{.ExpectedLength}} vs {{.ActualLength}} bytes;
{{if .StrictPrefix}}one side is a prefix of the other{{else}}first difference at offset {{.FirstDiffOffset}}{{end}}.</p>
{{end}}
{{with .Detail.Image}}
{{if not .DimensionsMatch}}
<p>Dimensions differ: {{.ExpectedWidth}}&times;{{.ExpectedHeight}} vs {{.ActualWidth}}&times;{{.ActualHeight}}.</p>
{{else}}
<p>{{printf "%.2f" (mulf .DiffRatio 100.0)}}% of {{.TotalPixels}} pixels differ
(max distance {{printf "%.4f" .MaxDistance}}, mean {{printf "%.5f" .MeanDistance}}).</p>
{{with pngURI .DiffMaskPNG}}<img class="preview" alt="pixel difference mask" src="{{.}}">{{end}}
{{end}}
{{end}}
{{with .Detail.Audio}}
<p>Alignment shift {{printf "%+.3f" .ShiftSeconds}}s{{if .AtWindowEdge}} (at search window edge){{end}};
loudness {{printf "%.2f" .ExpectedLoudnessDB}} vs {{printf "%.2f" .ActualLoudnessDB}} dB;
{{printf "%.2f" (mulf .DiffBinRatio 100.0)}}% of spectrogram bins differ.</p>
{{with pngURI .ExpectedWaveformPNG}}<img class="preview" alt="expected waveform" src="{{.}}">{{end}}
{{with pngURI .ActualWaveformPNG}}<img class="preview" alt="actual waveform" src="{{.}}">{{end}}
{{with pngURI .SpectrogramDiffPNG}}<img class="preview" alt="spectrogram difference" src="{{.}}">{{end}}
{{end}}
{{end}}
{{if .Err}}<p>Error: {{.Err}}</p>{{end}}
</section>
{{end}}
{{end}}
</body>
</html>
`
