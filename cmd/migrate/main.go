package main

import (
	"context"
	"flag"
	"log"
	"time"

	"event-access-platform/internal/config"
	pg "event-access-platform/internal/infra/db/postgres"
)

// Applies the schema idempotently. Run once before first boot and after
// upgrades; every statement is CREATE IF NOT EXISTS so reruns are safe.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    email_key         TEXT PRIMARY KEY,
    email             TEXT NOT NULL,
    name              TEXT,
    role              TEXT NOT NULL DEFAULT 'user',
    access_granted    BOOLEAN NOT NULL DEFAULT FALSE,
    access_type       TEXT NOT NULL DEFAULT 'none',
    coupon_code       TEXT,
    payment_reference TEXT,
    granted_at        TIMESTAMPTZ,
    revoked_at        TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_active_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_accounts_access_type ON accounts (access_type);

CREATE TABLE IF NOT EXISTS coupons (
    code        TEXT PRIMARY KEY,
    active      BOOLEAN NOT NULL DEFAULT TRUE,
    max_uses    INTEGER,
    used_count  INTEGER NOT NULL DEFAULT 0,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT coupons_used_within_max CHECK (max_uses IS NULL OR used_count <= max_uses)
);

CREATE TABLE IF NOT EXISTS coupon_usages (
    id        BIGSERIAL PRIMARY KEY,
    code      TEXT NOT NULL REFERENCES coupons (code) ON DELETE CASCADE,
    email_key TEXT NOT NULL,
    used_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_coupon_usages_code ON coupon_usages (code);

CREATE TABLE IF NOT EXISTS payment_records (
    id         TEXT PRIMARY KEY,
    event_id   TEXT NOT NULL UNIQUE,
    event_type TEXT NOT NULL,
    email      TEXT NOT NULL,
    amount     BIGINT NOT NULL DEFAULT 0,
    currency   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payment_records_email ON payment_records (email);

CREATE TABLE IF NOT EXISTS admins (
    email_key  TEXT PRIMARY KEY,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    role       TEXT NOT NULL DEFAULT 'admin',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS conferences (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    speaker      TEXT,
    description  TEXT,
    video_url    TEXT NOT NULL,
    scheduled_at TIMESTAMPTZ,
    published    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")
}
