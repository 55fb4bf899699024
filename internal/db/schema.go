package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Config selects the database, a remote libsql url takes precedence over a local file.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		file := config.File
		if file == "" {
			file = "classsync.db"
		}
		return sql.Open("sqlite", file)
	}

	dsn := config.Url
	if config.AuthToken != "" {
		dsn = fmt.Sprintf("%s?authToken=%s", config.Url, config.AuthToken)
	}
	return sql.Open("libsql", dsn)
}

// Migrate creates every table that does not exist yet.
func Migrate(ctx context.Context, data *sql.DB) error {
	_, err := data.ExecContext(ctx, Schema)
	return err
}
