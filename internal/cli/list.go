package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
	"github.com/baaaaaaaka/codex-workspace/internal/search"
)

const defaultTermWidth = 100

func newListCmd(root *rootOptions) *cobra.Command {
	var format string
	var query string
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions grouped by project",
		Args:  cobra.NoArgs,
		RunE: withEnv(root, func(cmd *cobra.Command, env *appEnv, _ []string) error {
			projects, err := env.scan()
			if err != nil {
				return err
			}
			if strings.TrimSpace(query) != "" {
				projects = search.Filter(projects, query)
			}
			if project != "" {
				p, ok := codexhistory.FindProject(projects, project)
				if !ok {
					return fmt.Errorf("project not found: %s", project)
				}
				projects = []codexhistory.ProjectBucket{p}
			}
			out := cmd.OutOrStdout()
			if format == "" {
				format = "plain"
				if isTerminal(out) {
					format = "table"
				}
			}
			return writeSessions(out, projects, format, terminalWidth(out))
		}),
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: table, plain or json (default: table on a terminal)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Fuzzy filter applied before listing")
	cmd.Flags().StringVar(&project, "project", "", "Only list sessions of this cwd")
	return cmd
}

func writeSessions(w io.Writer, projects []codexhistory.ProjectBucket, format string, width int) error {
	switch strings.ToLower(format) {
	case "table":
		return writeSessionsTable(w, projects, width)
	case "plain":
		return writeSessionsPlain(w, projects)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"projects": toProjectJSON(projects)})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

type sessionJSON struct {
	Path       string `json:"path"`
	FileName   string `json:"fileName"`
	ID         string `json:"id"`
	StartedAt  string `json:"startedAt"`
	EventCount int    `json:"eventCount"`
}

type projectJSON struct {
	Cwd      string        `json:"cwd"`
	Sessions []sessionJSON `json:"sessions"`
}

func toProjectJSON(projects []codexhistory.ProjectBucket) []projectJSON {
	out := make([]projectJSON, 0, len(projects))
	for _, p := range projects {
		pj := projectJSON{Cwd: p.Cwd, Sessions: make([]sessionJSON, 0, len(p.Sessions))}
		for _, s := range p.Sessions {
			pj.Sessions = append(pj.Sessions, sessionJSON{
				Path:       s.Path,
				FileName:   s.FileName,
				ID:         s.ID,
				StartedAt:  s.StartedAt,
				EventCount: s.EventCount,
			})
		}
		out = append(out, pj)
	}
	return out
}

func writeSessionsPlain(w io.Writer, projects []codexhistory.ProjectBucket) error {
	for _, p := range projects {
		for _, s := range p.Sessions {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.StartedAt, s.ID, s.Cwd, s.EventCount, s.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSessionsTable(w io.Writer, projects []codexhistory.ProjectBucket, width int) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	// Started and Events are fixed; the rest of the width goes to the cwd and
	// file columns.
	flexible := max(width-48, 24)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, WidthMax: flexible / 2},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, WidthMax: 8},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignLeft, WidthMax: flexible / 2},
	})
	tw.AppendHeader(table.Row{"Project", "Started", "Id", "Events", "File"})
	for _, p := range projects {
		for _, s := range p.Sessions {
			tw.AppendRow(table.Row{p.Cwd, s.StartedAt, s.ID, s.EventCount, s.FileName})
		}
	}
	if len(projects) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "-", 0, "-"})
	}
	tw.AppendFooter(table.Row{"", "", "", codexhistory.SessionCount(projects), fmt.Sprintf("%d project(s)", len(projects))})
	_ = tw.Render()
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
