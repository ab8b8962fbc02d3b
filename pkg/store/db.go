package store

import (
	"database/sql"
	"fmt"

	"github.com/nagelea/keysentry/pkg/errors"

	_ "modernc.org/sqlite"
)

// DB holds dual reader/writer connections with WAL mode enabled. The writer
// is limited to one connection so concurrent scan and verify runs queue
// instead of hitting "database is locked".
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

func NewDB(dbPath string) (result *DB, err error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath,
	)

	var writer *sql.DB
	writer, err = sql.Open("sqlite", dsn)
	if err != nil {
		err = errors.Wrapv(err, "unable to open writer connection", dbPath)
		return
	}
	writer.SetMaxOpenConns(1)

	if err = writer.Ping(); err != nil {
		_ = writer.Close()
		err = errors.Wrapv(err, "unable to ping writer connection", dbPath)
		return
	}

	var reader *sql.DB
	reader, err = sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		err = errors.Wrapv(err, "unable to open reader connection", dbPath)
		return
	}
	reader.SetMaxOpenConns(4)

	if err = reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		err = errors.Wrapv(err, "unable to ping reader connection", dbPath)
		return
	}

	result = &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}
	return
}

func (d *DB) Close() (err error) {
	if readerErr := d.Reader.Close(); readerErr != nil {
		err = errors.WithMessage(readerErr, "unable to close reader connection")
	}
	if writerErr := d.Writer.Close(); writerErr != nil && err == nil {
		err = errors.WithMessage(writerErr, "unable to close writer connection")
	}
	return
}
