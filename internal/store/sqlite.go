package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperengineering/lexicon/internal/types"
	_ "modernc.org/sqlite"
)

const (
	// recordTable is the table holding one row per vocabulary record.
	recordTable = "MAIN"
	workingFile = "working.db"
)

// SQLiteStore is a working copy of a store image backed by SQLite.
// The image passed to Open is never modified; changes become visible
// only through Export.
type SQLiteStore struct {
	db      *sql.DB
	workDir string
	label   string
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithLabel sets the label used in log lines, typically the image path.
func WithLabel(label string) Option {
	return func(s *SQLiteStore) {
		s.label = label
	}
}

// Open deserializes a store image into a private working copy.
// Returns an error wrapping ErrCorruptStore if the image is not a readable
// SQLite database.
func Open(ctx context.Context, image []byte, opts ...Option) (*SQLiteStore, error) {
	workDir, err := os.MkdirTemp("", "lexicon-store-*")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	path := filepath.Join(workDir, workingFile)
	if err := os.WriteFile(path, image, 0o600); err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("write working copy: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("open database: %w", err)
	}
	// ATTACH and temp state are per connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, workDir: workDir}
	for _, opt := range opts {
		opt(s)
	}

	if err := checkIntegrity(ctx, db, "main"); err != nil {
		s.Close()
		return nil, err
	}

	if err := enablePragmas(db); err != nil {
		s.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	slog.Debug("store opened",
		"component", "store",
		"store", s.label,
		"bytes", len(image),
	)

	return s, nil
}

// checkIntegrity runs quick_check against the named schema.
func checkIntegrity(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, schema string) error {
	var result string
	err := q.QueryRowContext(ctx, fmt.Sprintf("PRAGMA %s.quick_check", schema)).Scan(&result)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: integrity check: %s", ErrCorruptStore, result)
	}
	return nil
}

// enablePragmas sets SQLite pragmas for the working copy.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close releases the database and removes the working copy.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if rmErr := os.RemoveAll(s.workDir); rmErr != nil && err == nil {
		err = fmt.Errorf("remove working directory: %w", rmErr)
	}
	return err
}

// EnsureSchema creates the record table if absent. Existing rows are kept.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := RunMigrations(s.db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Exists reports whether a record exists for word.
func (s *SQLiteStore) Exists(ctx context.Context, word string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM MAIN WHERE word = ?`, word).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup word: %w", err)
	}
	return true, nil
}

// UpsertIfAbsent creates an unlearned record with an empty definition unless
// word already has one. It reports whether a record was created.
func (s *SQLiteStore) UpsertIfAbsent(ctx context.Context, word, usage, sourceTitle string) (bool, error) {
	if word == "" {
		return false, ErrEmptyWord
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO MAIN (word, information, context, book_title, learned)
		VALUES (?, '', ?, ?, 0)
		ON CONFLICT(word) DO NOTHING
	`, word, usage, sourceTitle)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// AugmentDefinition overwrites the definition of an existing record.
// Words without a record are ignored.
func (s *SQLiteStore) AugmentDefinition(ctx context.Context, word, definition string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE MAIN SET information = ? WHERE word = ?`, definition, word); err != nil {
		return fmt.Errorf("update definition: %w", err)
	}
	return nil
}

// SetLearned updates the learned flag of a record.
// Returns an error wrapping ErrUnknownWord when word has no record.
func (s *SQLiteStore) SetLearned(ctx context.Context, word string, learned bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE MAIN SET learned = ? WHERE word = ?`, boolToInt(learned), word)
	if err != nil {
		return fmt.Errorf("update learned: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}

	return nil
}

const selectRecords = `
	SELECT rowid, word, information, context, book_title, learned
	FROM MAIN
`

// Record returns the record for word.
func (s *SQLiteStore) Record(ctx context.Context, word string) (*types.Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecords+` WHERE word = ?`, word)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWord, word)
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return rec, nil
}

// AllRecords returns every record in the given order.
func (s *SQLiteStore) AllRecords(ctx context.Context, order types.SortOrder) ([]types.Record, error) {
	query := selectRecords
	switch order {
	case types.SortUnlearned:
		query += ` ORDER BY COALESCE(learned, 0) ASC, rowid DESC`
	default:
		query += ` ORDER BY rowid DESC`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// Stats returns learned and total record counts.
func (s *SQLiteStore) Stats(ctx context.Context) (types.Progress, error) {
	var p types.Progress
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN learned = 1 THEN 1 ELSE 0 END), 0)
		FROM MAIN
	`).Scan(&p.Total, &p.Learned)
	if err != nil {
		return types.Progress{}, fmt.Errorf("query stats: %w", err)
	}
	return p, nil
}

// Export serializes the working copy into a standalone image.
func (s *SQLiteStore) Export(ctx context.Context) ([]byte, error) {
	// With a rollback journal every committed change is already in the main
	// file. Reading it keeps rowids intact, which VACUUM does not promise.
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil, fmt.Errorf("read working copy: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) path() string {
	return filepath.Join(s.workDir, workingFile)
}

// scanRecord scans a row into a Record, tolerating NULL columns written by
// other tools.
func scanRecord(scanner interface{ Scan(...any) error }) (*types.Record, error) {
	var rec types.Record
	var definition, usage, title sql.NullString
	var learned sql.NullInt64

	if err := scanner.Scan(&rec.Seq, &rec.Word, &definition, &usage, &title, &learned); err != nil {
		return nil, err
	}

	rec.Definition = definition.String
	rec.Context = usage.String
	rec.SourceTitle = title.String
	rec.Learned = learned.Valid && learned.Int64 == 1

	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// quoteIdent quotes an SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes an SQLite string literal.
func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
