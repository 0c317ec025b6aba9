// Package testutil opens throwaway SQLite databases with the service schema so
// repository tests run without a Postgres server.
package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE products (
    id               TEXT PRIMARY KEY,
    stock_code       TEXT NOT NULL UNIQUE,
    name             TEXT NOT NULL,
    description      TEXT,
    unit             TEXT NOT NULL DEFAULT 'pcs',
    quantity_on_hand INTEGER NOT NULL DEFAULT 0 CHECK (quantity_on_hand >= 0),
    min_stock_level  INTEGER,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL,
    deleted_at       TIMESTAMP
);

CREATE TABLE inventory_movements (
    seq                     INTEGER PRIMARY KEY AUTOINCREMENT,
    id                      TEXT NOT NULL UNIQUE,
    product_stock_code      TEXT NOT NULL,
    movement_type           TEXT NOT NULL,
    quantity_change         INTEGER NOT NULL,
    quantity_after_movement INTEGER NOT NULL,
    notes                   TEXT NOT NULL DEFAULT '',
    reference_id            TEXT,
    created_by              TEXT NOT NULL,
    created_by_email        TEXT NOT NULL,
    created_at              TIMESTAMP NOT NULL
);

CREATE TABLE low_stock_alerts (
    id                       TEXT PRIMARY KEY,
    product_stock_code       TEXT NOT NULL,
    current_stock_at_alert   INTEGER NOT NULL,
    min_stock_level_at_alert INTEGER NOT NULL,
    status                   TEXT NOT NULL,
    triggered_at             TIMESTAMP NOT NULL,
    resolved_at              TIMESTAMP,
    notes                    TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX low_stock_alerts_one_active
    ON low_stock_alerts (product_stock_code) WHERE status = 'active';
`

// NewDB returns an in-memory database that is closed when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
