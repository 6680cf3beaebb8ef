package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/editor"
)

const previewLen = 32

func (c *CLI) validateCommand() *cobra.Command {
	var strict, quiet bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a conversation document",
		Long: `Load a conversation the way the editor does and report problems.

A document that cannot be parsed, or whose line ids are not exactly 0..n-1,
is rejected. Links to missing lines are listed as warnings; with --strict
they fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], strict, quiet, printer{cmd.OutOrStdout()})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat dangling links as errors")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the line table")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, path string, strict, quiet bool, out printer) error {
	ed := editor.New(editor.Options{
		BaseX:             c.config.Editor.BaseX,
		BaseY:             c.config.Editor.BaseY,
		RepairChoiceLinks: c.config.Editor.RepairChoiceLinks,
		Logger:            loggerFromContext(ctx),
		Hooks:             c.hooks(),
	})

	warnings, err := ed.Load(ctx, path)
	if err != nil {
		return err
	}

	if !quiet {
		out.println(StyleTitle.Render(path))
		out.println(lineTable(ed.Document()))
	}
	for _, w := range warnings {
		out.warning("%s", w)
	}

	if len(warnings) > 0 && strict {
		return fmt.Errorf("%s: %d dangling link(s)", path, len(warnings))
	}
	out.success("%s: %d lines, %d warnings", path, ed.NodeCount(), len(warnings))
	return nil
}

// lineTable renders one row per line with its outgoing links.
func lineTable(conv *dialogue.Conversation) string {
	rows := make([][]string, 0, len(conv.Lines))
	for _, l := range conv.Lines {
		rows = append(rows, []string{
			strconv.Itoa(l.ID),
			l.Name,
			truncateText(l.Text, previewLen),
			linkSummary(l),
		})
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "SPEAKER", "TEXT", "LINKS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 3 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		String()
}

func linkSummary(l dialogue.Dialogue) string {
	edges := l.Edges()
	parts := make([]string, 0, len(edges))
	for _, e := range edges {
		target := "end"
		if e.Resolved() {
			target = strconv.Itoa(e.Target)
		}
		if e.Kind == dialogue.EdgeChoice {
			parts = append(parts, fmt.Sprintf("#%d%s%s", e.Choice+1, iconArrow, target))
		} else {
			parts = append(parts, iconArrow+target)
		}
	}
	return strings.Join(parts, " ")
}

func truncateText(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
