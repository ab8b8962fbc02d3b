package errors_test

import (
	"testing"

	"github.com/nagelea/keysentry/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	errMsg     = "errMsg"
	panicMsg   = "panicMsg"
	prependMsg = "prependMsg"
)

func TestErrorv_StringValue(t *testing.T) {
	// Fire
	response := errors.Errorv(errMsg, "bar")

	require.Error(t, response)
	assert.Equal(t, errMsg+" (bar)", response.Error())
}

func TestErrorv_NilValue(t *testing.T) {
	// Fire
	response := errors.Errorv(errMsg, nil)

	require.Error(t, response)
	assert.Equal(t, errMsg+" ([nil])", response.Error())
}

func TestErrorv_EmptyStringValue(t *testing.T) {
	// Fire
	response := errors.Errorv(errMsg, "")

	require.Error(t, response)
	assert.Equal(t, errMsg+" ([empty string])", response.Error())
}

func TestErrorv_MultipleValues(t *testing.T) {
	// Fire
	response := errors.Errorv(errMsg, "bar", "bar2")

	require.Error(t, response)
	assert.Equal(t, errMsg+" (bar; bar2)", response.Error())
}

func TestCatchPanicDo(t *testing.T) {
	response := func() (response error) {

		// Fire
		defer errors.CatchPanicDo(func(err error) {
			response = err
		})
		panic(panicMsg)
	}()

	require.Error(t, response)
	assert.Equal(t, "panic caught: "+panicMsg, response.Error())
}

func TestCatchPanicSetErr(t *testing.T) {
	response := func() (response error) {

		// Fire
		defer errors.CatchPanicSetErr(&response, prependMsg)
		panic(panicMsg)
	}()

	require.Error(t, response)
	assert.Equal(t, prependMsg+": panic caught: "+panicMsg, response.Error())
}

func TestStackTrace_Direct(t *testing.T) {
	err := errors.New("") // Stacktrace recorded

	// Fire
	stacktrace := errors.StackTrace(err)

	assert.NotEmpty(t, stacktrace)
}

func TestStackTrace_RootError(t *testing.T) {
	err0 := errors.New("")               // Stacktrace recorded
	err1 := errors.WithMessage(err0, "") // No stacktrace
	err := errors.WithMessage(err1, "")  // No stacktrace

	// Fire
	stacktrace := errors.StackTrace(err)

	assert.NotEmpty(t, stacktrace)
}

func TestStackTrace_NoStacktrace(t *testing.T) {
	err := &simpleError{msg: ""} // No stacktrace

	// Fire
	stacktrace := errors.StackTrace(err)

	assert.Empty(t, stacktrace)
}

type simpleError struct {
	msg string
}

func (f *simpleError) Error() string { return f.msg }
