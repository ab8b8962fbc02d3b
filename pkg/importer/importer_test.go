package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var (
	anthropicSecret = "sk-ant-api03-" + strings.Repeat("b7Qx", 23) + "cAA"
	huggingSecret   = "hf_" + strings.Repeat("WqZn8", 6) + "RvQp"
)

func testLog() logg.Logg {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logg.NewLogrusLogg(logger)
}

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "keysentry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.RunMigrations(db.Writer))

	s := store.New(db, testLog())
	return New(s, catalog.NewDefault(), testLog()), s
}

func TestImporter_AttributesUndeclaredKeyType(t *testing.T) {
	imp, s := newTestImporter(t)

	summary, err := imp.Import(context.Background(), &Document{Credentials: []*Entry{
		{Value: anthropicSecret, RepoName: "acme/widgets"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)

	records, err := s.FetchByType(context.Background(), catalog.Anthropic)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, store.StatusUnknown, records[0].Status)
	require.Equal(t, "import", records[0].SourceType)
}

func TestImporter_DeclaredStatusSurvives(t *testing.T) {
	imp, s := newTestImporter(t)

	summary, err := imp.Import(context.Background(), &Document{Credentials: []*Entry{
		{Value: anthropicSecret, KeyType: "anthropic", Status: "revoked"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)

	stored, err := s.FetchWithSensitive(context.Background(), &store.Filter{Status: store.StatusRevoked})
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestImporter_DeclaredSeveritySurvives(t *testing.T) {
	imp, s := newTestImporter(t)

	summary, err := imp.Import(context.Background(), &Document{Credentials: []*Entry{
		{Value: anthropicSecret, Severity: "high"},
		{Value: huggingSecret},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Imported)

	records, err := s.FetchByType(context.Background(), catalog.Anthropic)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, catalog.SeverityHigh, records[0].Severity)

	records, err = s.FetchByType(context.Background(), catalog.HuggingFace)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, catalog.SeverityMedium, records[0].Severity)
}

func TestImporter_SkipsMismatchedDeclaredType(t *testing.T) {
	imp, _ := newTestImporter(t)

	summary, err := imp.Import(context.Background(), &Document{Credentials: []*Entry{
		{Value: anthropicSecret, KeyType: "huggingface"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Zero(t, summary.Imported)
}

func TestImporter_FakeIndicatorStillApplies(t *testing.T) {
	imp, _ := newTestImporter(t)

	summary, err := imp.Import(context.Background(), &Document{Credentials: []*Entry{
		{Value: anthropicSecret, Note: "example key from the docs"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Zero(t, summary.Imported)
}

func TestImporter_DeduplicatesAgainstStore(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	first, err := imp.Import(ctx, &Document{Credentials: []*Entry{
		{Value: huggingSecret},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, first.Imported)

	second, err := imp.Import(ctx, &Document{Credentials: []*Entry{
		{Value: huggingSecret},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, second.Duplicates)
	require.Zero(t, second.Imported)
}

func TestImporter_RejectsInvalidEntries(t *testing.T) {
	imp, _ := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Import(ctx, &Document{Credentials: []*Entry{{Value: ""}}})
	require.Error(t, err)

	_, err = imp.Import(ctx, &Document{Credentials: []*Entry{
		{Value: anthropicSecret, Status: "sort-of-valid"},
	}})
	require.Error(t, err)

	_, err = imp.Import(ctx, &Document{Credentials: []*Entry{
		{Value: anthropicSecret, Severity: "catastrophic"},
	}})
	require.Error(t, err)
}

func TestImporter_ImportFile(t *testing.T) {
	imp, _ := newTestImporter(t)

	path := filepath.Join(t.TempDir(), "declared.yaml")
	doc := "credentials:\n" +
		"  - value: " + anthropicSecret + "\n" +
		"    repoName: acme/widgets\n" +
		"  - value: " + huggingSecret + "\n" +
		"    status: invalid\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	summary, err := imp.ImportFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Imported)

	_, err = imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
