package logwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nagelea/keysentry/pkg/logwriter"

	"github.com/stretchr/testify/require"
)

func TestLogWriter_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	lw := logwriter.New(path)

	_, err := lw.Write([]byte("first line\n"))
	require.NoError(t, err)

	lw.DisableStdout()
	_, err = lw.Write([]byte("parked line\n"))
	require.NoError(t, err)
	lw.Reset()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "first line")
	require.Contains(t, string(raw), "parked line")
}
