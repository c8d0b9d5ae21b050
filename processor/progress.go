package processor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Progress modes accepted by NewProgress.
const (
	ProgressAuto    = "auto"
	ProgressBar     = "bar"
	ProgressPercent = "percent"
	ProgressNone    = "none"
)

const percentStep = 10

// Progress receives the number of columns read so far. Reports never
// affect the extracted data.
type Progress interface {
	Start(total int)
	Advance(done int)
	Finish()
}

// NewProgress builds the reporter for mode. In auto mode a bar is drawn
// when out is a terminal and percentage lines are logged otherwise.
func NewProgress(mode string, out io.Writer, isTerminal bool, log logrus.FieldLogger) (Progress, error) {
	switch mode {
	case ProgressAuto:
		if isTerminal {
			return NewBarProgress(out), nil
		}
		return NewPercentProgress(log), nil
	case ProgressBar:
		return NewBarProgress(out), nil
	case ProgressPercent:
		return NewPercentProgress(log), nil
	case ProgressNone, "":
		return NoProgress{}, nil
	}
	return nil, errors.Errorf("unknown progress mode %q", mode)
}

type NoProgress struct{}

func (NoProgress) Start(int)   {}
func (NoProgress) Advance(int) {}
func (NoProgress) Finish()     {}

// PercentProgress logs a line each time another tenth of the columns has
// been read.
type PercentProgress struct {
	Log     logrus.FieldLogger
	total   int
	nextPct int
}

func NewPercentProgress(log logrus.FieldLogger) *PercentProgress {
	return &PercentProgress{Log: log}
}

func (p *PercentProgress) Start(total int) {
	p.total = total
	p.nextPct = percentStep
	p.Log.Infof("Reading data: 0%% of %d columns", total)
}

func (p *PercentProgress) Advance(done int) {
	if p.total <= 0 {
		return
	}
	pct := done * 100 / p.total
	if pct < p.nextPct {
		return
	}
	p.Log.Infof("Reading data: %d%%", pct)
	for p.nextPct <= pct {
		p.nextPct += percentStep
	}
}

func (p *PercentProgress) Finish() {}

// BarProgress redraws a progress bar in place on out.
type BarProgress struct {
	Out     io.Writer
	model   progress.Model
	total   int
	lastPct int
}

func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{
		Out:   out,
		model: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

func (p *BarProgress) Start(total int) {
	p.total = total
	p.lastPct = -1
	p.draw(0)
}

func (p *BarProgress) Advance(done int) {
	if p.total <= 0 {
		return
	}
	pct := done * 100 / p.total
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct
	p.draw(done)
}

func (p *BarProgress) Finish() {
	fmt.Fprintln(p.Out)
}

func (p *BarProgress) draw(done int) {
	ratio := 1.0
	if p.total > 0 {
		ratio = float64(done) / float64(p.total)
	}
	fmt.Fprintf(p.Out, "\r%s (%d/%d)", p.model.ViewAs(ratio), done, p.total)
}
