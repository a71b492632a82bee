package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/mutate"
)

func newMoveCmd(root *rootOptions) *cobra.Command {
	return newSessionActionCmd(root, mutate.ActionMove, "mv <session>... <target-dir>", "Rewrite the cwd of sessions to a new directory")
}

func newCopyCmd(root *rootOptions) *cobra.Command {
	return newSessionActionCmd(root, mutate.ActionCopy, "cp <session>... <target-dir>", "Copy sessions under a new cwd, keeping their ids")
}

func newForkCmd(root *rootOptions) *cobra.Command {
	return newSessionActionCmd(root, mutate.ActionFork, "fork <session>... <target-dir>", "Copy sessions under a new cwd with fresh ids")
}

func newSessionActionCmd(root *rootOptions, action mutate.Action, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: withEnv(root, func(cmd *cobra.Command, env *appEnv, args []string) error {
			projects, err := env.scan()
			if err != nil {
				return err
			}
			refs, target := args[:len(args)-1], args[len(args)-1]
			targets, err := resolveSessions(projects, refs)
			if err != nil {
				return err
			}
			return runBatch(cmd, env, action, targets, target)
		}),
	}
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "rm <session>...",
		Short: "Delete sessions, leaving a timestamped backup next to each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(root, func(cmd *cobra.Command, env *appEnv, args []string) error {
			projects, err := env.scan()
			if err != nil {
				return err
			}
			targets, err := resolveSessions(projects, args)
			if err != nil {
				return err
			}
			return runBatch(cmd, env, mutate.ActionDelete, targets, confirm)
		}),
	}
	cmd.Flags().StringVar(&confirm, "confirm", "", "Must be "+mutate.DeleteConfirmation+" to delete")
	return cmd
}

func newProjectCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Apply an action to every session of a project",
	}
	cmd.AddCommand(
		newProjectActionCmd(root, mutate.ActionProjectRename, "mv <cwd> <target-dir>", "Move every session of a project to a new cwd"),
		newProjectActionCmd(root, mutate.ActionProjectCopy, "cp <cwd> <target-dir>", "Copy every session of a project under a new cwd"),
	)
	return cmd
}

func newProjectActionCmd(root *rootOptions, action mutate.Action, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(root, func(cmd *cobra.Command, env *appEnv, args []string) error {
			projects, err := env.scan()
			if err != nil {
				return err
			}
			cwd := strings.TrimSpace(args[0])
			project, ok := codexhistory.FindProject(projects, cwd)
			if !ok {
				return fmt.Errorf("project not found: %s", cwd)
			}
			return runBatch(cmd, env, action, project.Sessions, args[1])
		}),
	}
}

// resolveSessions looks up every reference, dropping repeats.
func resolveSessions(projects []codexhistory.ProjectBucket, refs []string) ([]codexhistory.SessionSummary, error) {
	seen := map[string]bool{}
	var out []codexhistory.SessionSummary
	for _, ref := range refs {
		sess, err := codexhistory.FindSession(projects, ref)
		if err != nil {
			return nil, err
		}
		if seen[sess.Path] {
			continue
		}
		seen[sess.Path] = true
		out = append(out, sess)
	}
	return out, nil
}

// runBatch applies the action and prints the same summary the UI shows.
// Per-session failures make the command fail after the summary is printed.
func runBatch(cmd *cobra.Command, env *appEnv, action mutate.Action, targets []codexhistory.SessionSummary, input string) error {
	res, err := env.engine().ApplyBatch(action, targets, input)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, res.Summary())
	for _, path := range res.Created {
		_, _ = fmt.Fprintln(out, "  created "+path)
	}
	if len(res.Failures) > 0 {
		for _, f := range res.Failures {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "  failed "+f.String())
		}
		return fmt.Errorf("%s: %d of %d session(s) failed", action, len(res.Failures), len(targets))
	}
	return nil
}
