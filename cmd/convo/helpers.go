package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/simbleau/convo/internal/adapters/file"
	"github.com/simbleau/convo/internal/adapters/redis"
	"github.com/simbleau/convo/internal/adapters/sqlite"
	"github.com/simbleau/convo/internal/logging"
	"github.com/simbleau/convo/pkg/adapters/memory"
	"github.com/simbleau/convo/pkg/codec"
	"github.com/simbleau/convo/pkg/ports"
	"github.com/simbleau/convo/pkg/session"
	"github.com/simbleau/convo/pkg/tree"
)

// newLogger builds the CLI logger, honoring --debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg.GetBool("debug") {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// loadTree parses the dialogue file at path.
func loadTree(path string) (*tree.Tree, error) {
	t, err := codec.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// newStore builds the session store selected by --store. The returned
// closer releases backend resources and is a no-op for the stores that
// hold none.
func newStore() (ports.StateStore, func() error, error) {
	noop := func() error { return nil }

	backend := cfg.GetString("store")
	keys, err := sessionKeys()
	if err != nil {
		return nil, nil, err
	}
	if keys != nil && backend != "file" {
		return nil, nil, fmt.Errorf("--session-key is only supported with --store file, not %q", backend)
	}

	switch backend {
	case "", "memory":
		return memory.NewStore(), noop, nil
	case "file":
		dir := filepath.Join(cfg.GetString("data-dir"), "sessions")
		if keys == nil {
			return file.New(dir), noop, nil
		}
		s, err := file.NewEncrypted(dir, *keys)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "redis":
		s := redis.New(cfg.GetString("redis-addr"), "", 0)
		return s, s.Close, nil
	case "sqlite":
		path := cfg.GetString("sqlite-path")
		if path == "" {
			path = filepath.Join(cfg.GetString("data-dir"), "sessions.db")
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (expected memory, file, redis, or sqlite)", backend)
	}
}

// sessionKeys parses --session-key and --session-key-fallbacks into key
// material for the file store. Keys are hex-encoded 32-byte values; an empty
// --session-key means sessions stay in plaintext and nil is returned.
func sessionKeys() (*file.Keys, error) {
	active := cfg.GetString("session-key")
	if active == "" {
		if cfg.GetString("session-key-fallbacks") != "" {
			return nil, fmt.Errorf("--session-key-fallbacks requires --session-key")
		}
		return nil, nil
	}

	keys := &file.Keys{}
	var err error
	if keys.Active, err = hex.DecodeString(active); err != nil {
		return nil, fmt.Errorf("invalid --session-key: %w", err)
	}
	for _, fb := range strings.Split(cfg.GetString("session-key-fallbacks"), ",") {
		if fb = strings.TrimSpace(fb); fb == "" {
			continue
		}
		decoded, err := hex.DecodeString(fb)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback key: %w", err)
		}
		keys.Fallbacks = append(keys.Fallbacks, decoded)
	}
	return keys, nil
}

// newManager builds a session manager over the selected store. A redis
// store brings its distributed locker along, so concurrent processes
// sharing the backend serialize their walks.
func newManager() (*session.Manager, func() error, error) {
	store, closeStore, err := newStore()
	if err != nil {
		return nil, nil, err
	}

	var opts []session.Option
	if rs, ok := store.(*redis.Store); ok {
		opts = append(opts, session.WithLocker(rs.Locker()))
	}
	return session.NewManager(store, opts...), closeStore, nil
}
