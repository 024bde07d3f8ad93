package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the five tables on startup. The unique constraint on
// processed_urls (product_id, template_id) is the sole cross-process dedup
// mechanism and must be enforced here, server-side.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT NOT NULL UNIQUE,
	last_input_at TIMESTAMPTZ,
	last_cycled_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS products (
	id                BIGSERIAL PRIMARY KEY,
	name              TEXT NOT NULL,
	category_id       BIGINT NOT NULL REFERENCES categories(id),
	last_extracted_at TIMESTAMPTZ,
	UNIQUE (category_id, name)
);

CREATE TABLE IF NOT EXISTS search_templates (
	id           BIGSERIAL PRIMARY KEY,
	category_id  BIGINT NOT NULL REFERENCES categories(id),
	url_template TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (category_id, url_template)
);

CREATE TABLE IF NOT EXISTS product_records (
	id             BIGSERIAL PRIMARY KEY,
	platform_url   TEXT NOT NULL,
	name           TEXT NOT NULL,
	original_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	product_url    TEXT NOT NULL DEFAULT '',
	image_url      TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count   INTEGER NOT NULL DEFAULT 0,
	stock_status   TEXT NOT NULL DEFAULT 'unknown',
	brand          TEXT NOT NULL DEFAULT '',
	extracted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS processed_urls (
	id             BIGSERIAL PRIMARY KEY,
	product_id     BIGINT NOT NULL REFERENCES products(id),
	template_id    BIGINT NOT NULL REFERENCES search_templates(id),
	url            TEXT NOT NULL,
	products_found INTEGER NOT NULL DEFAULT 0,
	products_saved INTEGER NOT NULL DEFAULT 0,
	success        BOOLEAN NOT NULL DEFAULT FALSE,
	processed_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (product_id, template_id)
);
`

// EnsureSchema creates missing tables. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
