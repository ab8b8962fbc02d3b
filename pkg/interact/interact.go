package interact

import (
	"github.com/nagelea/keysentry/pkg/interact/progress"
	"github.com/nagelea/keysentry/pkg/logwriter"
)

type (

	// Interact owns terminal niceties. When disabled (non-interactive
	// runs, piped output) every method degrades to a no-op and log lines
	// flow to stdout untouched.
	Interact struct {
		Enabled   bool
		logWriter *logwriter.LogWriter
	}
	Dummy       struct{}
	Interactish interface {
		NewProgress() *progress.Progress
		SpinWhile(message string, fnc func())
	}
)

func New(enabled bool, logWriter *logwriter.LogWriter) *Interact {
	return &Interact{
		Enabled:   enabled,
		logWriter: logWriter,
	}
}

func (f *Interact) NewProgress() *progress.Progress {
	if !f.Enabled {
		return nil
	}
	return progress.New(f.logWriter)
}

func (f *Interact) SpinWhile(message string, fnc func()) {
	if !f.Enabled {
		fnc()
		return
	}

	prog := progress.New(f.logWriter)
	spinner := prog.AddSpinner(message)
	fnc()
	spinner.Complete()
	prog.Wait()
}

func (d *Dummy) NewProgress() *progress.Progress {
	return nil
}

func (d *Dummy) SpinWhile(message string, fnc func()) {
	fnc()
}
