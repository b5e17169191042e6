package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	db             *sqlx.DB
	path           string
	eventListeners map[EventKind][]EventListener
}

// NewSQLiteDB opens the SQLite database at path. Foreign keys are enforced and
// the pool is limited to one connection: the store is single-writer and an
// in-memory database only lives as long as its connection.
func NewSQLiteDB(path string) (*DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &DB{
		db:             db,
		path:           path,
		eventListeners: make(map[EventKind][]EventListener),
	}, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}

// Path returns the path the database was opened with.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Migrate() error {
	// Create migrations tracking table if it doesn't exist
	_, err := db.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		migrations = append(migrations, entry.Name())
	}

	sort.Strings(migrations)

	for _, migration := range migrations {
		version := strings.TrimSuffix(migration, ".sql")

		var exists bool
		if err := db.db.Get(&exists, `
		    SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = ?)
		`, version); err != nil {
			return fmt.Errorf("failed to check if migration has been applied: %w", err)
		}
		if exists {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + migration)
		if err != nil {
			return fmt.Errorf("failed to read migration file: %w", err)
		}

		err = db.withTx(context.Background(), func(tx *sqlx.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", version, err)
			}
			if _, err := tx.Exec(`
			    INSERT INTO schema_migrations (version) VALUES (?)
			`, version); err != nil {
				return fmt.Errorf("failed to mark migration as applied: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("Migration %s applied successfully", version)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("rollback error: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}
