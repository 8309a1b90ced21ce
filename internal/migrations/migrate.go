package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var files embed.FS

const (
	sqliteDialect   = "sqlite3"
	postgresDialect = "postgres"
)

// Dialect maps a database/sql driver name onto the goose dialect.
func Dialect(driverName string) string {
	if driverName == "postgres" {
		return postgresDialect
	}
	return sqliteDialect
}

// Up runs all pending embedded SQL migrations.
func Up(db *sql.DB, driverName string) error {
	goose.SetBaseFS(files)
	if err := goose.SetDialect(Dialect(driverName)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "sql"); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}
