package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/baaaaaaaka/codex-workspace/internal/fsutil"
)

const appDirName = "codex-workspace"

// Store reads and writes the config file. Every access holds an in-process
// mutex and the "<path>.lock" file lock, so two workspaces saving pane widths
// on exit do not interleave.
type Store struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(base, appDirName, "config.json"), nil
}

func NewStore(pathOverride string) (*Store, error) {
	path := pathOverride
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &Store{path: path, lock: flock.New(path + ".lock")}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (Config, error) {
	var cfg Config
	err := s.locked(func() error {
		var err error
		cfg, err = s.read()
		return err
	})
	return cfg, err
}

func (s *Store) Save(cfg Config) error {
	return s.locked(func() error { return s.write(cfg) })
}

// Update applies fn to the current config and saves the result. Nothing is
// written when fn fails.
func (s *Store) Update(fn func(*Config) error) error {
	return s.locked(func() error {
		cfg, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(&cfg); err != nil {
			return err
		}
		return s.write(cfg)
	})
}

func (s *Store) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

func (s *Store) read() (Config, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{Version: CurrentVersion}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s *Store) write(cfg Config) error {
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("refuse to write config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := fsutil.AtomicWriteFile(s.path, append(b, '\n'), 0o600); err != nil {
		return fmt.Errorf("atomic write config: %w", err)
	}
	return nil
}

func (c Config) validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version %d (expected %d)", c.Version, CurrentVersion)
	}
	switch c.PreviewMode {
	case "", "chat", "events":
	default:
		return fmt.Errorf("invalid previewMode %q", c.PreviewMode)
	}
	return nil
}
