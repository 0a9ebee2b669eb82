package output

import (
	"io"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/semdiff/pkg/models"
)

// progressTemplate shows the running entry count and the path most
// recently finished; the total is unknown up front because the trees
// are enumerated lazily
const progressTemplate = `{{counters . }} entries {{speed . }} {{string . "path"}}`

// Progress renders a live progress line while the walker runs. Node is
// safe to call from multiple goroutines.
type Progress struct {
	bar *pb.ProgressBar
}

// NewProgress creates and starts a progress reporter writing to w
func NewProgress(w io.Writer) *Progress {
	bar := pb.New(0)
	bar.SetTemplateString(progressTemplate)
	bar.SetWriter(w)
	bar.Start()
	return &Progress{bar: bar}
}

// Node records one finished file node
func (p *Progress) Node(n *models.DiffNode) {
	p.bar.Set("path", n.Path)
	p.bar.Increment()
}

// Finish stops the progress line
func (p *Progress) Finish() {
	p.bar.Finish()
}
