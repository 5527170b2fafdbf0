// Package db owns the database schema. Migrate is run once at startup and is
// idempotent, every statement uses IF NOT EXISTS.
package db

import (
	"context"

	"blogserver/internal/interfaces"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS blog_schema;

CREATE TABLE IF NOT EXISTS blog_schema.users (
    user_id       UUID PRIMARY KEY,
    username      VARCHAR(20) NOT NULL UNIQUE,
    email         VARCHAR(128) NOT NULL UNIQUE,
    first_name    VARCHAR(50) NOT NULL DEFAULT '',
    last_name     VARCHAR(50) NOT NULL DEFAULT '',
    password      VARCHAR(96) NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    activated_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS blog_schema.profiles (
    user_id                 UUID PRIMARY KEY REFERENCES blog_schema.users (user_id) ON DELETE CASCADE,
    bio                     VARCHAR(512) NOT NULL DEFAULT '',
    newsletter_subscription BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS blog_schema.sessions (
    session_id  UUID PRIMARY KEY,
    user_id     UUID NOT NULL REFERENCES blog_schema.users (user_id) ON DELETE CASCADE,
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS blog_schema.categories (
    category_id UUID PRIMARY KEY,
    title       VARCHAR(64) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS blog_schema.entries (
    entry_id      UUID PRIMARY KEY,
    author_id     UUID NOT NULL REFERENCES blog_schema.users (user_id) ON DELETE CASCADE,
    category_id   UUID REFERENCES blog_schema.categories (category_id) ON DELETE SET NULL,
    title         VARCHAR(120) NOT NULL,
    content       TEXT NOT NULL,
    rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS blog_schema.comments (
    comment_id  UUID PRIMARY KEY,
    entry_id    UUID NOT NULL REFERENCES blog_schema.entries (entry_id) ON DELETE CASCADE,
    author_id   UUID NOT NULL REFERENCES blog_schema.users (user_id) ON DELETE CASCADE,
    content     VARCHAR(512) NOT NULL,
    stars       INT NOT NULL CHECK (stars BETWEEN 1 AND 5),
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS blog_schema.saved_posts (
    saved_post_id UUID PRIMARY KEY,
    user_id       UUID NOT NULL REFERENCES blog_schema.users (user_id) ON DELETE CASCADE,
    entry_id      UUID NOT NULL REFERENCES blog_schema.entries (entry_id) ON DELETE CASCADE,
    created_at    TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, entry_id)
);

CREATE INDEX IF NOT EXISTS entries_created_at_idx ON blog_schema.entries (created_at DESC);
CREATE INDEX IF NOT EXISTS entries_category_idx ON blog_schema.entries (category_id);
CREATE INDEX IF NOT EXISTS comments_entry_idx ON blog_schema.comments (entry_id);
`

func Migrate(ctx context.Context, pool interfaces.PgxPoolIface) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
