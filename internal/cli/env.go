package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/config"
	"github.com/baaaaaaaka/codex-workspace/internal/logger"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
)

// appEnv is what every command needs once flags are parsed.
type appEnv struct {
	store *config.Store
	cfg   config.Config
	home  string
	root  string
	log   *slog.Logger
}

// setupEnv starts the log file, loads preferences and resolves the sessions
// root. The returned cleanup closes the log file.
func setupEnv(root *rootOptions) (*appEnv, func(), error) {
	cleanup := func() {}
	if !root.noLog {
		path := strings.TrimSpace(root.logFile)
		if path == "" {
			p, err := logger.DefaultPath()
			if err != nil {
				return nil, cleanup, err
			}
			path = p
		}
		if err := logger.Init(path, root.debug); err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = logger.Close() }
	}
	log := logger.Get()

	store, err := config.NewStore(root.configPath)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	cfg, err := store.Load()
	if err != nil {
		log.Warn("config load failed", "path", store.Path(), "err", err)
		cleanup()
		return nil, func() {}, err
	}

	override := root.codexHome
	if strings.TrimSpace(override) == "" {
		override = cfg.HomeOverride()
	}
	home, err := codexhistory.ResolveCodexHome(override)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("resolve codex home: %w", err)
	}

	return &appEnv{
		store: store,
		cfg:   cfg,
		home:  home,
		root:  codexhistory.SessionsRoot(home),
		log:   log,
	}, cleanup, nil
}

func (e *appEnv) scan() ([]codexhistory.ProjectBucket, error) {
	projects, err := codexhistory.Scan(e.root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", e.root, err)
	}
	return projects, nil
}

func (e *appEnv) engine() *mutate.Engine {
	return mutate.NewEngine(e.root, e.log)
}

// withEnv wraps a command body with setupEnv and its cleanup.
func withEnv(root *rootOptions, fn func(cmd *cobra.Command, env *appEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, cleanup, err := setupEnv(root)
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, env, args)
	}
}
