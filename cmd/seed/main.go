// seed creates the schema and a demo account in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kundan1729/promptly-server/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoName     = "Demo User"
	demoEmail    = "demo@promptly.local"
	demoPassword = "demo-password"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id                     uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		name                   text NOT NULL,
		email                  text NOT NULL UNIQUE,
		password_hash          text,
		reset_token            text,
		reset_token_expires_at timestamptz,
		created_at             timestamptz NOT NULL DEFAULT now(),
		updated_at             timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS users_reset_token_idx ON users (reset_token) WHERE reset_token IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS history (
		id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id     uuid REFERENCES users (id),
		prompt      text NOT NULL,
		feedback    jsonb,
		patternized jsonb,
		pattern     text,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS collections (
		id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id     uuid REFERENCES users (id),
		prompt      text NOT NULL,
		patternized text NOT NULL,
		pattern     text,
		created_at  timestamptz NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS collections_user_created_idx ON collections (user_id, created_at DESC)`,
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("apply schema: %v", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		log.Fatalf("hash demo password: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		demoName, demoEmail, string(hash),
	)
	if err != nil {
		log.Fatalf("insert demo user: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Login:    %s / %s\n", demoEmail, demoPassword)
}
