package migrate

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose"
)

// Up applies pending goose migrations from dir.
func Up(connStr, dir string) error {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("opening migrations connection: %w", err)
	}
	defer db.Close()
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
