package cli

import (
	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0"
	commit  = ""
	date    = ""
)

type rootOptions struct {
	configPath string
	codexHome  string
	logFile    string
	noLog      bool
	debug      bool
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var watch bool

	cmd := &cobra.Command{
		Use:           "codex-workspace",
		Short:         "Browse, search and reorganize Codex sessions in a terminal UI",
		SilenceErrors: false,
		SilenceUsage:  true,
		Version:       buildVersion(),
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspaceTui(cmd, opts, watch)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Override config file path (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.codexHome, "codex-home", "", "Override Codex home (default: $CODEX_HOME or ~/.codex)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path (default: OS user cache dir)")
	cmd.PersistentFlags().BoolVar(&opts.noLog, "no-log", false, "Disable the log file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log at debug level")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rescan automatically when session files change")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newMoveCmd(opts),
		newCopyCmd(opts),
		newForkCmd(opts),
		newDeleteCmd(opts),
		newProjectCmd(opts),
	)

	return cmd
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
