package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-workspace/internal/config"
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
	"github.com/baaaaaaaka/codex-workspace/internal/tui"
	"github.com/baaaaaaaka/codex-workspace/internal/workspace"
)

var runTui = tui.Run

func runWorkspaceTui(cmd *cobra.Command, root *rootOptions, watch bool) error {
	env, cleanup, err := setupEnv(root)
	if err != nil {
		return err
	}
	defer cleanup()

	projectPct, sessionPct := env.cfg.Panes()
	ws := workspace.New(workspace.Options{
		Root:           env.root,
		Logger:         env.log,
		PreviewMode:    preview.ParseMode(env.cfg.PreviewMode),
		ProjectPanePct: projectPct,
		SessionPanePct: sessionPct,
	})
	// A failed scan is reported in the status line; the UI still opens.
	_ = ws.Reload()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runTui(ctx, tui.Options{
		Workspace: ws,
		Logger:    env.log,
		Watch:     watch,
	})
	if perr := persistLayout(env, ws); perr != nil {
		env.log.Warn("config save failed", "path", env.store.Path(), "err", perr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// persistLayout saves the pane widths and preview mode chosen in the UI.
func persistLayout(env *appEnv, ws *workspace.State) error {
	project, session := ws.PanePcts()
	mode := ws.PreviewMode().String()
	return env.store.Update(func(cfg *config.Config) error {
		cfg.SetPanes(project, session)
		cfg.PreviewMode = mode
		return nil
	})
}
