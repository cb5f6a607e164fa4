package db

import (
	"context"
	"fmt"
	"strings"
)

// sqliteSchema is the full database schema for SQLite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dorms (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    address    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS blocks (
    id         INTEGER PRIMARY KEY,
    dorm_id    INTEGER NOT NULL REFERENCES dorms(id),
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
    id         INTEGER PRIMARY KEY,
    block_id   INTEGER NOT NULL REFERENCES blocks(id),
    number     TEXT NOT NULL,
    capacity   INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'manager', 'staff')),
    dorm_id       INTEGER REFERENCES dorms(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    dorm_id     INTEGER NOT NULL REFERENCES dorms(id),
    name        TEXT NOT NULL,
    description TEXT,
    unit        TEXT NOT NULL DEFAULT 'pcs',
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_dorm ON items(dorm_id);

CREATE TABLE IF NOT EXISTS inventory_stock (
    item_id    INTEGER NOT NULL REFERENCES items(id),
    dorm_id    INTEGER NOT NULL REFERENCES dorms(id),
    block_id   INTEGER NOT NULL REFERENCES blocks(id),
    room_id    INTEGER NOT NULL REFERENCES rooms(id),
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (item_id, room_id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_stock_room ON inventory_stock(room_id);

CREATE TABLE IF NOT EXISTS inventory_transactions (
    id            INTEGER PRIMARY KEY,
    item_id       INTEGER NOT NULL REFERENCES items(id),
    dorm_id       INTEGER NOT NULL REFERENCES dorms(id),
    type          TEXT NOT NULL CHECK (type IN ('receive', 'assign', 'transfer', 'demolish_central', 'demolish_room', 'unassign')),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    from_block_id INTEGER REFERENCES blocks(id),
    from_room_id  INTEGER REFERENCES rooms(id),
    to_block_id   INTEGER REFERENCES blocks(id),
    to_room_id    INTEGER REFERENCES rooms(id),
    reference     TEXT,
    note          TEXT,
    performed_by  INTEGER NOT NULL REFERENCES users(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_inventory_transactions_item
    ON inventory_transactions(item_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// postgresSchema mirrors sqliteSchema for PostgreSQL.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS dorms (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    address    TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS blocks (
    id         BIGSERIAL PRIMARY KEY,
    dorm_id    BIGINT NOT NULL REFERENCES dorms(id),
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rooms (
    id         BIGSERIAL PRIMARY KEY,
    block_id   BIGINT NOT NULL REFERENCES blocks(id),
    number     TEXT NOT NULL,
    capacity   INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'manager', 'staff')),
    dorm_id       BIGINT REFERENCES dorms(id),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    deleted_at    TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          BIGSERIAL PRIMARY KEY,
    dorm_id     BIGINT NOT NULL REFERENCES dorms(id),
    name        TEXT NOT NULL,
    description TEXT,
    unit        TEXT NOT NULL DEFAULT 'pcs',
    quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_items_dorm ON items(dorm_id);

CREATE TABLE IF NOT EXISTS inventory_stock (
    item_id    BIGINT NOT NULL REFERENCES items(id),
    dorm_id    BIGINT NOT NULL REFERENCES dorms(id),
    block_id   BIGINT NOT NULL REFERENCES blocks(id),
    room_id    BIGINT NOT NULL REFERENCES rooms(id),
    quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (item_id, room_id)
);

CREATE INDEX IF NOT EXISTS idx_inventory_stock_room ON inventory_stock(room_id);

CREATE TABLE IF NOT EXISTS inventory_transactions (
    id            BIGSERIAL PRIMARY KEY,
    item_id       BIGINT NOT NULL REFERENCES items(id),
    dorm_id       BIGINT NOT NULL REFERENCES dorms(id),
    type          TEXT NOT NULL CHECK (type IN ('receive', 'assign', 'transfer', 'demolish_central', 'demolish_room', 'unassign')),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    from_block_id BIGINT REFERENCES blocks(id),
    from_room_id  BIGINT REFERENCES rooms(id),
    to_block_id   BIGINT REFERENCES blocks(id),
    to_room_id    BIGINT REFERENCES rooms(id),
    reference     TEXT,
    note          TEXT,
    performed_by  BIGINT NOT NULL REFERENCES users(id),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_inventory_transactions_item
    ON inventory_transactions(item_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);
`

// migrations are applied in order after the schema. Each must be idempotent.
// Append new migrations at the end.
var migrations = map[Dialect][]string{
	SQLite: {
		// Migration 1: per-item index for distribution reports.
		`CREATE INDEX IF NOT EXISTS idx_inventory_stock_item ON inventory_stock(item_id)`,
	},
	Postgres: {
		`CREATE INDEX IF NOT EXISTS idx_inventory_stock_item ON inventory_stock(item_id)`,
	},
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, d *DB) error {
	schema := sqliteSchema
	if d.Dialect == Postgres {
		schema = postgresSchema
	}

	// pgx does not accept several statements in one prepared Exec.
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Migrate ensures the schema and then runs the dialect's migrations.
func Migrate(ctx context.Context, d *DB) error {
	if err := EnsureSchema(ctx, d); err != nil {
		return err
	}

	for i, m := range migrations[d.Dialect] {
		if _, err := d.DB.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
