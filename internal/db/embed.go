package db

import (
	"embed"
	"fmt"
	"io/fs"
)

// Migration files ship inside the binary so installs never depend on the
// source tree being present.
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// getMigrationsFS returns the embedded migrations with the directory prefix
// stripped, the layout the migrate source expects.
func getMigrationsFS() (fs.FS, error) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}

// MigrateUpEmbedded applies all embedded migrations. Server startup and
// tests use this so a fresh database is ready without a separate migrate
// invocation.
func (db *DB) MigrateUpEmbedded() error {
	fsys, err := getMigrationsFS()
	if err != nil {
		return err
	}
	return db.MigrateUp(fsys)
}
