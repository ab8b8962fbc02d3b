package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/manip"

	"github.com/google/uuid"
)

var (
	// The secret value is already stored (hash conflict); a harmless skip
	ErrDuplicate = errors.New("duplicate credential")

	// A public record and its sensitive payload no longer pair up; this
	// violates the core storage invariant and must never be swallowed
	ErrPairingViolation = errors.New("credential pairing violation")

	ErrRecordNotFound = errors.New("credential record not found")
)

// Store is the persistence adapter. Both tables are written and deleted as a
// unit; the compensating delete keeps a public record from outliving its
// payload when the second write fails.
type Store struct {
	db  *DB
	log logg.Logg
}

func New(db *DB, log logg.Logg) *Store {
	return &Store{db: db, log: log}
}

// Seen reports whether a secret with this dedup hash is already stored. The
// UNIQUE constraint on content_hash remains the final guard; this is the
// cheap fast path consulted before classification work is discarded.
func (s *Store) Seen(ctx context.Context, contentHash string) (result bool, err error) {
	row := s.db.Reader.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM credentials WHERE content_hash = ?`, contentHash)

	var count int
	if err = row.Scan(&count); err != nil {
		err = errors.Wrap(err, "unable to check for existing hash")
		return
	}

	result = count > 0
	return
}

// Store inserts the public record, then the payload. A hash conflict returns
// ErrDuplicate. A payload failure triggers a compensating delete of the
// public row; if that delete also fails the pairing violation is surfaced.
func (s *Store) Store(ctx context.Context, record *CredentialRecord, payload *SensitivePayload) (id string, err error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = StatusUnknown
	}
	if record.FirstSeen.IsZero() {
		record.FirstSeen = time.Now().UTC()
	}
	if record.MaskedValue == "" {
		record.MaskedValue = manip.MaskValue(payload.SecretValue, MaskedPreviewKeep)
	}
	if record.ContentHash == "" {
		record.ContentHash = HashValue(payload.SecretValue)
	}

	res, err := s.db.Writer.ExecContext(ctx,
		`INSERT INTO credentials
			(id, key_type, masked_value, content_hash, confidence, severity, status,
			 repo_name, file_path, language, source_type, first_seen, last_verified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (content_hash) DO NOTHING`,
		record.ID, record.KeyType.String(), record.MaskedValue, record.ContentHash,
		record.Confidence.String(), record.Severity.String(), string(record.Status),
		record.RepoName, record.FilePath, record.Language, record.SourceType,
		record.FirstSeen, record.LastVerified)
	if err != nil {
		err = errors.Wrapv(err, "unable to insert credential record", record.KeyType)
		return
	}

	affected, err := res.RowsAffected()
	if err != nil {
		err = errors.Wrap(err, "unable to read insert result")
		return
	}
	if affected == 0 {
		err = errors.WithMessagev(ErrDuplicate, "hash already stored", record.ContentHash)
		return
	}

	payload.CredentialID = record.ID
	_, err = s.db.Writer.ExecContext(ctx,
		`INSERT INTO credential_payloads (credential_id, secret_value, raw_context, source_url)
		 VALUES (?, ?, ?, ?)`,
		payload.CredentialID, payload.SecretValue, payload.RawContext, payload.SourceURL)
	if err != nil {
		err = errors.Wrapv(err, "unable to insert sensitive payload", record.ID)

		// Compensate: the public record must not outlive its payload
		s.log.WithField("credentialID", record.ID).Warn("payload write failed, removing public record")
		if _, delErr := s.db.Writer.ExecContext(ctx,
			`DELETE FROM credentials WHERE id = ?`, record.ID); delErr != nil {
			err = errors.WithMessagev(ErrPairingViolation,
				"compensating delete failed after payload write failure", record.ID, delErr.Error())
			return
		}
		return
	}

	id = record.ID
	return
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, verifiedAt time.Time) (err error) {
	res, err := s.db.Writer.ExecContext(ctx,
		`UPDATE credentials SET status = ?, last_verified = ? WHERE id = ?`,
		string(status), verifiedAt, id)
	if err != nil {
		err = errors.Wrapv(err, "unable to update status", id)
		return
	}
	return s.requireAffected(res, id)
}

func (s *Store) Reclassify(ctx context.Context, id string, newType catalog.KeyType, newConfidence catalog.Confidence) (err error) {
	res, err := s.db.Writer.ExecContext(ctx,
		`UPDATE credentials SET key_type = ?, confidence = ? WHERE id = ?`,
		newType.String(), newConfidence.String(), id)
	if err != nil {
		err = errors.Wrapv(err, "unable to reclassify record", id)
		return
	}
	return s.requireAffected(res, id)
}

// Delete removes both halves, payload first so a public record never
// outlives its payload even on partial failure.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	if _, err = s.db.Writer.ExecContext(ctx,
		`DELETE FROM credential_payloads WHERE credential_id = ?`, id); err != nil {
		err = errors.Wrapv(err, "unable to delete sensitive payload", id)
		return
	}

	if _, err = s.db.Writer.ExecContext(ctx,
		`DELETE FROM credentials WHERE id = ?`, id); err != nil {
		err = errors.WithMessagev(ErrPairingViolation,
			"payload deleted but record delete failed", id, err.Error())
		return
	}

	return
}

// FetchUnverified returns credentials never probed, secrets included
func (s *Store) FetchUnverified(ctx context.Context, limit int) (result []*StoredCredential, err error) {
	return s.FetchWithSensitive(ctx, &Filter{Status: StatusUnknown, Limit: limit})
}

func (s *Store) FetchByType(ctx context.Context, keyType catalog.KeyType) (result []*CredentialRecord, err error) {
	rows, err := s.db.Reader.QueryContext(ctx,
		recordColumns+` FROM credentials c WHERE key_type = ? ORDER BY first_seen`, keyType.String())
	if err != nil {
		err = errors.Wrapv(err, "unable to fetch records by type", keyType)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var record *CredentialRecord
		if record, err = scanRecord(rows); err != nil {
			return
		}
		result = append(result, record)
	}
	err = rows.Err()
	return
}

// FetchWithSensitive joins records with their payloads, newest last
func (s *Store) FetchWithSensitive(ctx context.Context, filter *Filter) (result []*StoredCredential, err error) {
	query := recordColumns + `,
			p.secret_value, p.raw_context, p.source_url
		 FROM credentials c
		 JOIN credential_payloads p ON p.credential_id = c.id
		 WHERE 1=1`
	var args []interface{}

	if filter.KeyType != "" {
		query += ` AND c.key_type = ?`
		args = append(args, filter.KeyType.String())
	}
	if filter.Status != "" {
		query += ` AND c.status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY c.first_seen`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		err = errors.Wrap(err, "unable to fetch credentials with payloads")
		return
	}
	defer rows.Close()

	for rows.Next() {
		record := &CredentialRecord{}
		payload := &SensitivePayload{}

		var keyType, confidence, severity, status string
		var lastVerified sql.NullTime
		if err = rows.Scan(
			&record.ID, &keyType, &record.MaskedValue, &record.ContentHash,
			&confidence, &severity, &status,
			&record.RepoName, &record.FilePath, &record.Language, &record.SourceType,
			&record.FirstSeen, &lastVerified,
			&payload.SecretValue, &payload.RawContext, &payload.SourceURL,
		); err != nil {
			err = errors.Wrap(err, "unable to scan credential row")
			return
		}
		fillRecord(record, keyType, confidence, severity, status, lastVerified)
		payload.CredentialID = record.ID

		result = append(result, &StoredCredential{Record: record, Payload: payload})
	}
	err = rows.Err()
	return
}

// CountByStatus powers pipeline metrics and the audit report header
func (s *Store) CountByStatus(ctx context.Context) (result map[Status]int, err error) {
	rows, err := s.db.Reader.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM credentials GROUP BY status`)
	if err != nil {
		err = errors.Wrap(err, "unable to count records by status")
		return
	}
	defer rows.Close()

	result = map[Status]int{}
	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			err = errors.Wrap(err, "unable to scan status count")
			return
		}
		result[Status(status)] = count
	}
	err = rows.Err()
	return
}

const recordColumns = `SELECT c.id, c.key_type, c.masked_value, c.content_hash, c.confidence,
			c.severity, c.status, c.repo_name, c.file_path, c.language, c.source_type,
			c.first_seen, c.last_verified`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (result *CredentialRecord, err error) {
	record := &CredentialRecord{}

	var keyType, confidence, severity, status string
	var lastVerified sql.NullTime
	if err = row.Scan(
		&record.ID, &keyType, &record.MaskedValue, &record.ContentHash,
		&confidence, &severity, &status,
		&record.RepoName, &record.FilePath, &record.Language, &record.SourceType,
		&record.FirstSeen, &lastVerified,
	); err != nil {
		err = errors.Wrap(err, "unable to scan credential record")
		return
	}

	fillRecord(record, keyType, confidence, severity, status, lastVerified)
	result = record
	return
}

func fillRecord(record *CredentialRecord, keyType, confidence, severity, status string, lastVerified sql.NullTime) {
	record.KeyType = catalog.KeyType(keyType)
	record.Confidence = catalog.NewConfidenceFromValue(confidence)
	record.Severity = catalog.NewSeverityFromValue(severity)
	record.Status = Status(status)
	if lastVerified.Valid {
		t := lastVerified.Time
		record.LastVerified = &t
	}
}

func (s *Store) requireAffected(res sql.Result, id string) (err error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "unable to read update result")
	}
	if affected == 0 {
		return errors.WithMessagev(ErrRecordNotFound, "no such record", id)
	}
	return
}
