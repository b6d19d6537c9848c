// Package testutil builds Kindle vocabulary images for tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperengineering/lexicon/internal/types"
	_ "modernc.org/sqlite"
)

// kindleSchema mirrors the relations a Kindle vocab.db carries.
var kindleSchema = []string{
	`CREATE TABLE WORDS (id TEXT PRIMARY KEY NOT NULL, word TEXT, stem TEXT, lang TEXT, category INTEGER DEFAULT 0, timestamp INTEGER DEFAULT 0, profileid TEXT)`,
	`CREATE TABLE LOOKUPS (id TEXT PRIMARY KEY NOT NULL, word_key TEXT, book_key TEXT, dict_key TEXT, pos TEXT, usage TEXT, timestamp INTEGER DEFAULT 0)`,
	`CREATE TABLE BOOK_INFO (id TEXT PRIMARY KEY NOT NULL, asin TEXT, guid TEXT, lang TEXT, title TEXT, authors TEXT)`,
	`CREATE INDEX lookupwordindex ON LOOKUPS (word_key)`,
}

// KindleImage returns a Kindle vocabulary image holding lookups in order.
// A lookup with an empty word is stored with a NULL word.
func KindleImage(t testing.TB, lookups ...types.LookupEvent) []byte {
	t.Helper()
	return buildImage(t, func(db *sql.DB) {
		for _, stmt := range kindleSchema {
			mustExec(t, db, stmt)
		}
		for i, l := range lookups {
			insertLookup(t, db, i, l)
		}
	})
}

// ImageWithStatements returns an image built by running stmts in order.
func ImageWithStatements(t testing.TB, stmts ...string) []byte {
	t.Helper()
	return buildImage(t, func(db *sql.DB) {
		for _, stmt := range stmts {
			mustExec(t, db, stmt)
		}
	})
}

func insertLookup(t testing.TB, db *sql.DB, i int, l types.LookupEvent) {
	t.Helper()
	wordKey := fmt.Sprintf("en:%d", i)
	var word any
	if l.Word != "" {
		word = l.Word
		wordKey = "en:" + l.Word
	}
	bookKey := "book:" + l.SourceTitle

	mustExec(t, db, `INSERT OR IGNORE INTO WORDS (id, word, stem, lang) VALUES (?, ?, ?, 'en')`, wordKey, word, word)
	mustExec(t, db, `INSERT OR IGNORE INTO BOOK_INFO (id, asin, guid, lang, title, authors) VALUES (?, ?, ?, 'en', ?, 'Anon')`,
		bookKey, bookKey, bookKey, l.SourceTitle)
	mustExec(t, db, `INSERT INTO LOOKUPS (id, word_key, book_key, usage, timestamp) VALUES (?, ?, ?, ?, ?)`,
		fmt.Sprintf("lookup-%d", i), wordKey, bookKey, l.Context, i)
}

func buildImage(t testing.TB, build func(db *sql.DB)) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	build(db)
	if err := db.Close(); err != nil {
		t.Fatalf("close fixture db: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture db: %v", err)
	}
	return data
}

func mustExec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
