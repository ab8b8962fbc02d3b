package interact_test

import (
	"path/filepath"
	"testing"

	"github.com/nagelea/keysentry/pkg/interact"
	"github.com/nagelea/keysentry/pkg/logwriter"

	"github.com/stretchr/testify/require"
)

func TestInteract_SpinWhileRunsFunc(t *testing.T) {
	lw := logwriter.New(filepath.Join(t.TempDir(), "test.log"))

	ran := false
	interact.New(true, lw).SpinWhile("working", func() {
		ran = true
	})
	require.True(t, ran)
}

func TestInteract_SpinWhileDisabledSkipsSpinner(t *testing.T) {
	ran := false
	interact.New(false, nil).SpinWhile("working", func() {
		ran = true
	})
	require.True(t, ran)
}

func TestInteract_DisabledProducesNoProgress(t *testing.T) {
	require.Nil(t, interact.New(false, nil).NewProgress())
	require.Nil(t, (&interact.Dummy{}).NewProgress())
}
