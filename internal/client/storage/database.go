// Package storage opens the local sqlite database and wires up the
// client-side repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/eduterm/internal/client/migrations"
	"github.com/dmitrijs2005/eduterm/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/eduterm/internal/client/repositories/transcripts"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Credentials credentials.Repository
	Transcripts transcripts.Repository
	DB          *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the sqlite database at dsn, runs
// pending migrations and returns the repository set. The sealing secret
// protects the persisted credential record at rest.
func InitDatabase(ctx context.Context, dsn string, secret []byte) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Credentials: credentials.NewSQLiteRepository(db, secret),
		Transcripts: transcripts.NewSQLiteRepository(db),
		DB:          db,
	}, nil
}
