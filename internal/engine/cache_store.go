package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

type redisStore struct {
	rdb *redis.Client
}

func newRedisStore(redisURL string) (*redisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
	return &redisStore{rdb: rdb}, nil
}

func (s *redisStore) Name() string { return "redis" }

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("cache: redis get failed", slog.Any("error", err))
		}
		return nil, false
	}
	return data, true
}

func (s *redisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

func (s *redisStore) Purge(context.Context) error { return nil }

// sqliteStore keeps cached tool outputs in a single-table sqlite file.
type sqliteStore struct {
	db *sql.DB
}

func newSQLiteStore(path string) (*sqliteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cache (
		key        TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	slog.Info("cache: L2 sqlite opened", slog.String("path", path))
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Name() string { return "sqlite" }

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM cache WHERE key = ? AND expires_at > ?`,
		key, time.Now().UnixMilli(),
	).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Debug("cache: sqlite get failed", slog.Any("error", err))
		}
		return nil, false
	}
	return data, true
}

func (s *sqliteStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (key, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, time.Now().Add(ttl).UnixMilli(),
	)
	return err
}

func (s *sqliteStore) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at <= ?`, time.Now().UnixMilli())
	return err
}
