package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/treehole/internal/client/migrations"
	"github.com/dmitrijs2005/treehole/internal/filex"
	"github.com/dmitrijs2005/treehole/internal/logging"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// DatabaseFile is the local SQLite file name inside the data directory.
const DatabaseFile = "treehole.db"

func init() {
	goose.SetLogger(goose.NopLogger())
}

// SetMigrationLogger sends goose progress lines for both the local and the
// remote schema to log at debug level. Until it is called they are dropped.
func SetMigrationLogger(log logging.Logger) {
	goose.SetLogger(logging.NewPrintfLogger(log.With("component", "migrations")))
}

// RunMigrations applies the embedded local schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDataDir creates dataDir if needed and opens the database inside it.
func OpenDataDir(ctx context.Context, dataDir string) (*sql.DB, error) {
	path, err := filex.DataFile(dataDir, DatabaseFile)
	if err != nil {
		return nil, err
	}
	return InitDatabase(ctx, path)
}
