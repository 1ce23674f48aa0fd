package store

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("store: create extension: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          email         TEXT NOT NULL UNIQUE,
          password_hash TEXT NOT NULL,
          name          TEXT,
          created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          name       TEXT NOT NULL,
          owner_id   uuid NOT NULL REFERENCES users(id),
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_members (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          user_id     uuid NOT NULL REFERENCES users(id),
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE (playlist_id, user_id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_movies (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          playlist_id uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          movie_id    INT NOT NULL,
          title       TEXT,
          poster_path TEXT,
          added_by_id uuid NOT NULL REFERENCES users(id),
          added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE (playlist_id, movie_id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS watched_entries (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          user_id     uuid NOT NULL REFERENCES users(id),
          movie_id    INT NOT NULL,
          title       TEXT,
          poster_path TEXT,
          added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE (user_id, movie_id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS recommendations (
          id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          from_user_id uuid NOT NULL REFERENCES users(id),
          to_user_id   uuid NOT NULL REFERENCES users(id),
          movie_id     INT NOT NULL,
          title        TEXT,
          poster_path  TEXT,
          message      TEXT,
          read_at      TIMESTAMPTZ,
          created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	return nil
}
