package logwriter

import (
	"io"
	"os"
	"sync"

	"github.com/nagelea/keysentry/pkg/errors"
)

// LogWriter tees log output to a file and, unless parked by a progress
// display, to stdout.
type LogWriter struct {
	logFilePath string
	logFile     *os.File
	mutex       *sync.Mutex
	stdEnabled  bool
}

func New(logFilePath string) (result *LogWriter) {
	return &LogWriter{
		logFilePath: logFilePath,
		mutex:       &sync.Mutex{},
		stdEnabled:  true,
	}
}

func (l *LogWriter) Reset() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.stdEnabled = true
}

func (l *LogWriter) DisableStdout() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.stdEnabled = false
}

func (l *LogWriter) Write(p []byte) (n int, err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	file := l.file()

	if l.stdEnabled {
		return io.MultiWriter(file, os.Stdout).Write(p)
	}
	return file.Write(p)
}

func (l *LogWriter) file() (result *os.File) {
	if l.logFile != nil {
		return l.logFile
	}

	var err error
	result, err = os.OpenFile(l.logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic(errors.Wrapv(err, "unable to open log file", l.logFilePath).Error())
	}

	l.logFile = result

	return
}
