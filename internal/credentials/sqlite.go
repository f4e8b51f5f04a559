package credentials

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/otvetbot/internal/filex"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var gooseOnce sync.Once

// RunMigrations applies the embedded schema to db. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	var setupErr error
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrations)
		goose.SetLogger(goose.NopLogger())
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return setupErr
	}
	return goose.UpContext(ctx, db, "migrations")
}

// SQLiteStore keeps accounts in the "accounts" table of a SQLite database.
// The database is opened and migrated on first use so that a corrupt file
// surfaces through Load as ErrStorageUnreadable.
type SQLiteStore struct {
	path  string
	codec TokenCodec
	db    *sql.DB
}

func NewSQLiteStore(path string, opts ...Option) *SQLiteStore {
	o := buildOptions(opts)
	return &SQLiteStore{path: path, codec: o.codec}
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if s.path != ":memory:" {
		if err := filex.EnsureParentDir(s.path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", s.path, err)
	}
	s.db = db
	return db, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Accounts, error) {
	db, err := s.open(ctx)
	if err != nil {
		return Accounts{}, fmt.Errorf("%w: %v", ErrStorageUnreadable, err)
	}

	rows, err := db.QueryContext(ctx, `SELECT identifier, session_token FROM accounts ORDER BY position`)
	if err != nil {
		return Accounts{}, fmt.Errorf("%w: list accounts: %v", ErrStorageUnreadable, err)
	}
	defer rows.Close()

	stored := Accounts{}
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.Identifier, &acc.SessionToken); err != nil {
			return Accounts{}, fmt.Errorf("%w: scan account: %v", ErrStorageUnreadable, err)
		}
		stored = append(stored, acc)
	}
	if err := rows.Err(); err != nil {
		return Accounts{}, fmt.Errorf("%w: iterate accounts: %v", ErrStorageUnreadable, err)
	}

	return openAll(s.codec, stored)
}

// Save replaces the table contents in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, accounts Accounts) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	sealed, err := sealAll(s.codec, accounts)
	if err != nil {
		return err
	}

	return withTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
			return fmt.Errorf("failed to clear accounts: %w", err)
		}
		for i, acc := range sealed {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO accounts (identifier, position, session_token) VALUES (?, ?, ?)`,
				acc.Identifier, i, acc.SessionToken,
			); err != nil {
				return fmt.Errorf("failed to insert account[%s]: %w", acc.Identifier, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// withTx commits when fn succeeds and rolls back on error or panic.
// Panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
