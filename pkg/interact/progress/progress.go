package progress

import (
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/vbauerster/mpb/v5"
)

type (
	Progress struct {
		uiProgress *mpb.Progress
		logWriter  LogWriter
	}

	// LogWriter parks stdout log output while bars are drawn
	LogWriter interface {
		Reset()
		DisableStdout()
	}
)

func New(logWriter LogWriter) *Progress {
	return &Progress{
		uiProgress: mpb.New(mpb.PopCompletedMode()),
		logWriter:  logWriter,
	}
}

func (p *Progress) AddBar(barName string, total int, appendMsgFormat, completedMessage string, log logg.Logg) *Bar {
	p.DisableStdout()
	return newBar(p, barName, total, appendMsgFormat, completedMessage, log)
}

func (p *Progress) AddSpinner(barName string) *Spinner {
	p.DisableStdout()
	return newSpinner(p, barName)
}

func (p *Progress) Add(total int64, filler mpb.BarFiller, options ...mpb.BarOption) *mpb.Bar {
	return p.uiProgress.Add(total, filler, options...)
}

// BustThrough runs fnc with log output restored, then parks it again.
// Used for error lines that must appear even while bars own the terminal.
func (p *Progress) BustThrough(fnc func()) {
	if p.logWriter != nil {
		p.logWriter.Reset()
	}
	fnc()
	p.DisableStdout()
}

func (p *Progress) DisableStdout() {
	if p.logWriter != nil {
		p.logWriter.DisableStdout()
	}
}

func (p *Progress) Wait() {
	p.uiProgress.Wait()
	if p.logWriter != nil {
		p.logWriter.Reset()
	}
}
