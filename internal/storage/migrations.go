package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Migration representa uma versão do schema
type Migration struct {
	Version int
	Up      string
}

// AllMigrations contains every schema migration in order.
var AllMigrations = []Migration{
	{Version: 1, Up: migrationV1Up},
	{Version: 2, Up: migrationV2SeedStatuses},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS categories (
    id          BIGSERIAL PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
    id          BIGSERIAL PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    price       NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
    quantity    INTEGER NOT NULL CHECK (quantity >= 0),
    category_id BIGINT NOT NULL REFERENCES categories(id),
    is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id) WHERE NOT is_deleted;

CREATE TABLE IF NOT EXISTS basket_lines (
    user_id     VARCHAR(255) NOT NULL,
    product_id  BIGINT NOT NULL REFERENCES products(id),
    count       INTEGER NOT NULL CHECK (count > 0),
    PRIMARY KEY (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS areas (
    id          BIGSERIAL PRIMARY KEY,
    ref         VARCHAR(255) NOT NULL,
    description VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS settlements (
    id          BIGSERIAL PRIMARY KEY,
    ref         VARCHAR(255) NOT NULL,
    description VARCHAR(255) NOT NULL,
    area_id     BIGINT REFERENCES areas(id)
);

CREATE TABLE IF NOT EXISTS warehouses (
    id            BIGSERIAL PRIMARY KEY,
    ref           VARCHAR(255) NOT NULL,
    description   VARCHAR(255) NOT NULL,
    settlement_id BIGINT NOT NULL REFERENCES settlements(id)
);

CREATE TABLE IF NOT EXISTS order_statuses (
    id   INTEGER PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id          UUID PRIMARY KEY,
    user_id     VARCHAR(255) NOT NULL,
    status_id   INTEGER NOT NULL REFERENCES order_statuses(id),
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_contact_infos (
    order_id     UUID PRIMARY KEY REFERENCES orders(id) ON DELETE CASCADE,
    first_name   VARCHAR(255) NOT NULL,
    last_name    VARCHAR(255) NOT NULL,
    phone        VARCHAR(32) NOT NULL,
    warehouse_id BIGINT NOT NULL REFERENCES warehouses(id)
);

CREATE TABLE IF NOT EXISTS order_items (
    id          BIGSERIAL PRIMARY KEY,
    order_id    UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  BIGINT NOT NULL REFERENCES products(id),
    price       NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
    count       INTEGER NOT NULL CHECK (count > 0),
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);

CREATE TABLE IF NOT EXISTS inventory_movements (
    id              UUID PRIMARY KEY,
    product_id      BIGINT NOT NULL REFERENCES products(id),
    order_id        UUID NOT NULL,
    change_quantity INTEGER NOT NULL,
    movement_type   VARCHAR(32) NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_inventory_movements_order ON inventory_movements(order_id);
`

const migrationV2SeedStatuses = `
INSERT INTO order_statuses (id, name) VALUES
    (1, 'Pending'),
    (2, 'Processing'),
    (3, 'Shipped'),
    (4, 'Delivered'),
    (5, 'Completed')
ON CONFLICT (id) DO NOTHING;
`

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PendingMigrations returns the migrations newer than current, in order.
func PendingMigrations(current int) []Migration {
	var pending []Migration
	for _, m := range AllMigrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	return pending
}

// Migrate aplica as migrações pendentes usando database/sql com o driver lib/pq
func Migrate(ctx context.Context, dsn string, logger *zap.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	var current int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range PendingMigrations(current) {
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		logger.Info("✅ Migration applied", zap.Int("version", m.Version))
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.Version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
