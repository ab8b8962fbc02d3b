package errors

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/nagelea/keysentry/pkg/logg"

	errorsOrig "github.com/pkg/errors"
)

type (
	DoWithPanicFunc func(recovered interface{})
	DoWithErrFunc   func(err error)
)

// Add contextual information to the end of the error string
func Errorv(message string, arg0 interface{}, args ...interface{}) error {
	return errorsOrig.New(messageWithValue(message, arg0, args...))
}

// Like Errorv(), but for WithMessage()
func WithMessagev(err error, message string, arg0 interface{}, args ...interface{}) error {
	return errorsOrig.WithMessage(err, messageWithValue(message, arg0, args...))
}

// Like Errorv(), but for Wrap()
func Wrapv(err error, message string, arg0 interface{}, args ...interface{}) error {
	return errorsOrig.Wrap(err, messageWithValue(message, arg0, args...))
}

// Wrapped
func New(message string) error {
	return errorsOrig.New(message)
}

// Wrapped
func Errorf(format string, args ...interface{}) error {
	return errorsOrig.Errorf(format, args...)
}

// Wrapped
func WithStack(err error) error {
	return errorsOrig.WithStack(err)
}

// Wrapped
func Wrap(err error, message string) error {
	return errorsOrig.Wrap(err, message)
}

// Wrapped
func Wrapf(err error, message string, args ...interface{}) error {
	return errorsOrig.Wrapf(err, message, args...)
}

// Wrapped
func WithMessage(err error, message string) error {
	return errorsOrig.WithMessage(err, message)
}

// Wrapped
func WithMessagef(err error, format string, args ...interface{}) error {
	return errorsOrig.WithMessagef(err, format, args...)
}

// Wrapped
func Cause(err error) error {
	return errorsOrig.Cause(err)
}

// Wrapped
func Is(err, target error) bool {
	return errorsOrig.Is(err, target)
}

// Log error and return logger object
func ErrLog(log logg.Logg, err error) logg.Logg {
	log = WithStacktrace(log, err)
	return log.WithError(err)
}

// Log error then exit
func Fatal(log logg.Logg, err error) {
	ErrLog(log, err).Error("fatal error")
	os.Exit(1)
}

//
// Panic handling

type PanicError struct {
	msg string
}

func (pe PanicError) Error() string {
	return pe.msg
}

func NewPanicError(recovered interface{}) (result PanicError) {
	return PanicError{msg: fmt.Sprintf("panic caught: %v", recovered)}
}

// Catch panic and do something with the recovered value
func CatchPanicValueDo(panicHandle DoWithPanicFunc) {
	if recovered := recover(); recovered != nil {
		panicHandle(recovered)
	}
}

// Catch panic, convert it to an error object, and do something with it
func CatchPanicDo(doFunc DoWithErrFunc) {
	if recovered := recover(); recovered != nil {
		doFunc(WithStack(NewPanicError(recovered)))
	}
}

// Catch panic and log it as an error
func CatchPanicAndLogError(log logg.Logg, logMsg string) {
	if recovered := recover(); recovered != nil {
		panicErr := NewPanicError(recovered)
		if logMsg == "" {
			logMsg = panicErr.Error()
		}
		log.WithError(WithStack(panicErr)).Error(logMsg)
	}
}

// Catch panic, convert it to an error object, and set an error pointer with it
func CatchPanicSetErr(err *error, message string) {
	if recovered := recover(); recovered != nil {
		*err = WithStack(NewPanicError(recovered))
		if message != "" {
			*err = WithMessage(*err, message)
		}
	}
}

//
// Stacktraces

func StackTraceString(err error) string {
	buf := bytes.Buffer{}
	stackTrace := StackTrace(err)

	if stackTrace != nil {
		for _, f := range stackTrace {
			buf.WriteString(fmt.Sprintf("%+v \n", f))
		}
	}

	return buf.String()
}

func StackTrace(err error) errorsOrig.StackTrace {
	var st errorsOrig.StackTrace
	for err != nil {

		// Stacktrace on this err?
		ster, ok := err.(interface{ StackTrace() errorsOrig.StackTrace })
		if ok {
			st = ster.StackTrace()
		}

		// Climb tree
		err = getInnerError(err)
	}
	return st
}

func WithStacktrace(log logg.Logg, err error) logg.Logg {
	return log.WithField("stacktrace", StackTraceString(err))
}

func messageWithValue(message string, arg0 interface{}, args ...interface{}) string {
	v := value(arg0, args...)
	if v == "" {
		return message
	}
	return fmt.Sprintf("%s (%v)", message, v)
}

func value(arg0 interface{}, args ...interface{}) string {
	if len(args) == 0 {
		if arg0 == "" {
			return "[empty string]"
		}
		if arg0 == nil {
			return "[nil]"
		}

		switch v := arg0.(type) {
		case map[string]interface{}:
			return fieldsString(v)
		case logg.Fields:
			return fieldsString(v)
		case logg.Logg:
			return fieldsString(v.Data())
		}

		return fmt.Sprintf("%+v", arg0)
	}

	values := make([]string, len(args)+1)
	values[0] = value(arg0)
	for i, arg := range args {
		values[i+1] = value(arg)
	}

	return strings.Join(values, "; ")
}

func fieldsString(fields map[string]interface{}) string {
	parts := make([]string, 0, len(fields))
	for key, val := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", key, val))
	}
	return strings.Join(parts, " ")
}

func getInnerError(err error) error {
	cer, ok := err.(interface {
		Cause() error
	})
	if !ok {
		return nil
	}
	return cer.Cause()
}
