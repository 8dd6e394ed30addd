package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"pet-guardianship/internal/adapters/storage/sqlstore"
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// Open abre la base SQLite en path (":memory:" vale para tests). Un solo conn abierto:
// SQLite tiene un único escritor y así el índice único decide sin SQLITE_BUSY.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := "file::memory:"
	if path != ":memory:" {
		dsn = "file:" + filepath.Clean(path)
	}
	dsn += "?" + pragmas

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

func NewStore(db *sql.DB) *sqlstore.Store {
	return sqlstore.New(db, Dialect{})
}
