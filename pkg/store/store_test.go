package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *DB) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "keysentry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return New(db, logg.NewLogrusLogg(logger)), db
}

func testCredential(secret string) (*CredentialRecord, *SensitivePayload) {
	record := &CredentialRecord{
		KeyType:    catalog.OpenAIProject,
		Confidence: catalog.ConfidenceHigh,
		Severity:   catalog.SeverityMedium,
		RepoName:   "acme/widgets",
		FilePath:   "config/.env",
		Language:   "Dotenv",
		SourceType: "github",
	}
	payload := &SensitivePayload{
		SecretValue: secret,
		RawContext:  "OPENAI_API_KEY=" + secret,
		SourceURL:   "https://github.com/acme/widgets/blob/main/config/.env",
	}
	return record, payload
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	secret := "sk-proj-roundtrip000000000000000000000000000000000000"
	record, payload := testCredential(secret)

	id, err := s.Store(ctx, record, payload)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := s.FetchWithSensitive(ctx, &Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got := stored[0]
	require.Equal(t, id, got.Record.ID)
	require.Equal(t, catalog.OpenAIProject, got.Record.KeyType)
	require.Equal(t, catalog.ConfidenceHigh, got.Record.Confidence)
	require.Equal(t, catalog.SeverityMedium, got.Record.Severity)
	require.Equal(t, StatusUnknown, got.Record.Status)
	require.Equal(t, "acme/widgets", got.Record.RepoName)
	require.Nil(t, got.Record.LastVerified)
	require.Equal(t, secret, got.Payload.SecretValue)
	require.Equal(t, HashValue(secret), got.Record.ContentHash)

	// The public half carries only a masked preview
	require.NotEqual(t, secret, got.Record.MaskedValue)
	require.NotContains(t, got.Record.MaskedValue, secret[10:40])
}

func TestStore_DuplicateRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	secret := "sk-proj-duplicate000000000000000000000000000000000000"
	record, payload := testCredential(secret)
	_, err := s.Store(ctx, record, payload)
	require.NoError(t, err)

	seen, err := s.Seen(ctx, HashValue(secret))
	require.NoError(t, err)
	require.True(t, seen)

	// Same secret from a different file is still the same credential
	again, againPayload := testCredential(secret)
	again.FilePath = "notebooks/train.ipynb"
	_, err = s.Store(ctx, again, againPayload)
	require.True(t, errors.Is(err, ErrDuplicate))

	stored, err := s.FetchWithSensitive(ctx, &Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "config/.env", stored[0].Record.FilePath)
}

func TestStore_CompensatingDelete(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	_, err := db.Writer.ExecContext(ctx, `DROP TABLE credential_payloads`)
	require.NoError(t, err)

	record, payload := testCredential("sk-proj-orphaned0000000000000000000000000000000000000")
	_, err = s.Store(ctx, record, payload)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrPairingViolation))

	// The compensating delete removed the public half
	var count int
	row := db.Reader.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials`)
	require.NoError(t, row.Scan(&count))
	require.Zero(t, count)
}

func TestStore_UpdateStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	record, payload := testCredential("sk-proj-verified0000000000000000000000000000000000000")
	id, err := s.Store(ctx, record, payload)
	require.NoError(t, err)

	verifiedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateStatus(ctx, id, StatusValid, verifiedAt))

	stored, err := s.FetchWithSensitive(ctx, &Filter{Status: StatusValid})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Record.LastVerified)
	require.True(t, stored[0].Record.LastVerified.Equal(verifiedAt))

	err = s.UpdateStatus(ctx, "no-such-id", StatusInvalid, verifiedAt)
	require.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestStore_Reclassify(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	record, payload := testCredential("sk-proj-retyped00000000000000000000000000000000000000")
	id, err := s.Store(ctx, record, payload)
	require.NoError(t, err)

	require.NoError(t, s.Reclassify(ctx, id, catalog.OpenRouter, catalog.ConfidenceMedium))

	records, err := s.FetchByType(ctx, catalog.OpenRouter)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, catalog.ConfidenceMedium, records[0].Confidence)

	records, err = s.FetchByType(ctx, catalog.OpenAIProject)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestStore_DeleteRemovesBothHalves(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	secret := "sk-proj-deleted00000000000000000000000000000000000000"
	record, payload := testCredential(secret)
	id, err := s.Store(ctx, record, payload)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	seen, err := s.Seen(ctx, HashValue(secret))
	require.NoError(t, err)
	require.False(t, seen)

	var count int
	row := db.Reader.QueryRowContext(ctx, `SELECT COUNT(1) FROM credential_payloads`)
	require.NoError(t, row.Scan(&count))
	require.Zero(t, count)

	// Deleting twice is harmless
	require.NoError(t, s.Delete(ctx, id))
}

func TestStore_FetchUnverified(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, suffix := range []string{"aaa", "bbb", "ccc"} {
		record, payload := testCredential("sk-proj-unverified0000000000000000000000000000000" + suffix)
		id, err := s.Store(ctx, record, payload)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.UpdateStatus(ctx, ids[0], StatusValid, time.Now().UTC()))

	unverified, err := s.FetchUnverified(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unverified, 2)
	for _, cred := range unverified {
		require.Equal(t, StatusUnknown, cred.Record.Status)
		require.NotEmpty(t, cred.Payload.SecretValue)
	}

	limited, err := s.FetchUnverified(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestStore_CountByStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, suffix := range []string{"111", "222", "333"} {
		record, payload := testCredential("sk-proj-counted000000000000000000000000000000000" + suffix)
		id, err := s.Store(ctx, record, payload)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.UpdateStatus(ctx, ids[0], StatusValid, time.Now().UTC()))
	require.NoError(t, s.UpdateStatus(ctx, ids[1], StatusInvalid, time.Now().UTC()))

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, counts[StatusValid])
	require.Equal(t, 1, counts[StatusInvalid])
	require.Equal(t, 1, counts[StatusUnknown])
}
