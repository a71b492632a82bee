package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/preview"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	var events bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <session>",
		Short: "Print a session the way the preview pane renders it",
		Long:  "Print a session the way the preview pane renders it. <session> is a file path, file name, session id or unambiguous id prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(root, func(cmd *cobra.Command, env *appEnv, args []string) error {
			projects, err := env.scan()
			if err != nil {
				return err
			}
			sess, err := codexhistory.FindSession(projects, args[0])
			if err != nil {
				return err
			}
			mode := preview.ModeChat
			if events {
				mode = preview.ModeEvents
			}
			w := width
			if w <= 0 {
				w = terminalWidth(cmd.OutOrStdout())
			}
			data, err := preview.Build(preview.NewCache(), sess, mode, w, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range data.Lines {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&events, "events", false, "Show the raw event stream instead of the conversation")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default: terminal width)")
	return cmd
}
