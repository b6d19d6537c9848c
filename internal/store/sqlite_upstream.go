package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperengineering/lexicon/internal/types"
)

// upstreamTables are the Kindle relations joined to produce lookup events.
var upstreamTables = []string{"WORDS", "LOOKUPS", "BOOK_INFO"}

// LookupEvents returns every lookup recorded by the e-reader in source order.
// A missing upstream relation is reported as ErrCorruptStore.
func (s *SQLiteStore) LookupEvents(ctx context.Context) ([]types.LookupEvent, error) {
	missing, err := s.missingTables(ctx, upstreamTables)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing relations %s", ErrCorruptStore, strings.Join(missing, ", "))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.word, l.usage, bi.title
		FROM LOOKUPS l
		JOIN WORDS w ON l.word_key = w.id
		JOIN BOOK_INFO bi ON l.book_key = bi.id
		ORDER BY l.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var events []types.LookupEvent
	for rows.Next() {
		var word, usage, title sql.NullString
		if err := rows.Scan(&word, &usage, &title); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		events = append(events, types.LookupEvent{
			Word:        word.String,
			Context:     usage.String,
			SourceTitle: title.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}

	return events, nil
}

// missingTables returns the names from want that are not tables in the image.
func (s *SQLiteStore) missingTables(ctx context.Context, want []string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %v", ErrCorruptStore, err)
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	var missing []string
	for _, name := range want {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// upstreamObject is a table or index definition copied from an upload.
type upstreamObject struct {
	kind string
	name string
	sql  string
}

// ReplaceUpstream replaces every relation except the record table with the
// ones found in image, a freshly exported e-reader database. Records and
// their learned flags are preserved.
func (s *SQLiteStore) ReplaceUpstream(ctx context.Context, image []byte) error {
	uploadPath := filepath.Join(s.workDir, "upload.db")
	if err := os.WriteFile(uploadPath, image, 0o600); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	defer os.Remove(uploadPath)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "ATTACH DATABASE "+quoteLiteral(uploadPath)+" AS upload"); err != nil {
		return fmt.Errorf("%w: attach upload: %v", ErrCorruptStore, err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "DETACH DATABASE upload"); err != nil {
			slog.Warn("detach upload failed", "component", "store", "error", err)
		}
	}()

	if err := checkIntegrity(ctx, conn, "upload"); err != nil {
		return err
	}

	objects, err := listUpstreamObjects(ctx, conn)
	if err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tables int
	for _, obj := range objects {
		if obj.kind != "table" {
			continue
		}
		ident := quoteIdent(obj.name)
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS main."+ident); err != nil {
			return fmt.Errorf("drop %s: %w", obj.name, err)
		}
		if _, err := tx.ExecContext(ctx, obj.sql); err != nil {
			return fmt.Errorf("create %s: %w", obj.name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO main."+ident+" SELECT * FROM upload."+ident); err != nil {
			return fmt.Errorf("copy %s: %w", obj.name, err)
		}
		tables++
	}
	for _, obj := range objects {
		if obj.kind != "index" {
			continue
		}
		if _, err := tx.ExecContext(ctx, obj.sql); err != nil {
			return fmt.Errorf("create index %s: %w", obj.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("upstream relations replaced",
		"component", "store",
		"action", "replace_upstream",
		"store", s.label,
		"tables", tables,
	)

	return nil
}

// listUpstreamObjects returns the user tables and explicit indexes of the
// attached upload, skipping the record table and migration bookkeeping.
func listUpstreamObjects(ctx context.Context, conn *sql.Conn) ([]upstreamObject, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT type, name, sql
		FROM upload.sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name NOT IN (?, ?)
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, rowid
	`, recordTable, gooseTable)
	if err != nil {
		return nil, fmt.Errorf("list upload objects: %w", err)
	}
	defer rows.Close()

	var objects []upstreamObject
	for rows.Next() {
		var obj upstreamObject
		if err := rows.Scan(&obj.kind, &obj.name, &obj.sql); err != nil {
			return nil, fmt.Errorf("scan upload object: %w", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upload objects: %w", err)
	}

	return objects, nil
}
