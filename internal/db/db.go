package db

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

func NewBunPostgresClient(connectionString string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connectionString)))

	db := bun.NewDB(sqldb, pgdialect.New())

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	return db
}

// NewBunSQLiteClient opens a pure-Go SQLite database. SQLite allows a single
// writer, so the pool is pinned to one connection; this also keeps ":memory:"
// databases alive for the lifetime of the handle.
func NewBunSQLiteClient(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Open picks the dialect from the configured driver name.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "", "postgres":
		return NewBunPostgresClient(dsn), nil
	case "sqlite":
		return NewBunSQLiteClient(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
