package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/marcboeker/go-duckdb/v2"
	"github.com/sirupsen/logrus"
	"github.com/validprot/validprot/internal/types"
)

// Store is an open handle to a DuckDB file. It holds a single connection and
// is not meant to be shared between concurrent callers.
type Store struct {
	db       *sql.DB
	location string
}

// Open connects to an existing DuckDB file. Unlike the DuckDB default, a
// missing file is an error rather than a new empty database.
var ErrClosed = errors.New("store is closed")

func Open(ctx context.Context, location string) (*Store, error) {
	start := time.Now()
	logrus.WithField("location", location).Info("Connecting to store")

	if location == "" {
		return nil, &types.ConnectionError{Location: location, Err: errors.New("empty location")}
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, &types.ConnectionError{Location: location, Err: err}
	}
	if info.IsDir() {
		return nil, &types.ConnectionError{Location: location, Err: errors.New("location is a directory")}
	}

	connector, err := duckdb.NewConnector(location, nil)
	if err != nil {
		return nil, &types.ConnectionError{Location: location, Err: err}
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &types.ConnectionError{Location: location, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"location": location,
		"elapsed":  time.Since(start).String(),
	}).Info("Connection established")

	return &Store{db: db, location: location}, nil
}

// Create makes a new DuckDB file with empty base tables.
func Create(ctx context.Context, location string) (*Store, error) {
	if _, err := os.Stat(location); err == nil {
		return nil, &types.ConnectionError{Location: location, Err: os.ErrExist}
	}
	connector, err := duckdb.NewConnector(location, nil)
	if err != nil {
		return nil, &types.ConnectionError{Location: location, Err: err}
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	s := &Store{db: db, location: location}
	if err := s.CreateSourceSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Location() string {
	return s.location
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// Close checkpoints pending writes into the database file and releases the
// handle. Calling Close more than once is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil

	_, cerr := db.Exec("CHECKPOINT")
	if cerr != nil {
		cerr = fmt.Errorf("failed to checkpoint store: %w", cerr)
	}
	if err := db.Close(); err != nil {
		return errors.Join(cerr, fmt.Errorf("failed to close store: %w", err))
	}
	return cerr
}

func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// Query runs a statement returning rows. The caller closes the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *Store) CreateSourceSchema(ctx context.Context) error {
	if err := s.Exec(ctx, sourceSchema); err != nil {
		return fmt.Errorf("failed to create source schema: %w", err)
	}
	return nil
}

// Tables lists the base tables present in the store, sorted by name.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *Store) HasTable(ctx context.Context, table types.Table) (bool, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range tables {
		if name == string(table) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table types.Table) (int64, error) {
	if !table.Known() {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
