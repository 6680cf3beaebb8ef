package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parley/pkg/editor"
)

func (c *CLI) newCommand() *cobra.Command {
	var (
		lines int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "new [file]",
		Short: "Create a conversation skeleton",
		Long: `Create a linear conversation of --lines lines, each linked to the next.
The last line ends the conversation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(cmd.Context(), args[0], lines, force, printer{cmd.OutOrStdout()})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", defaultLines, "number of lines")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) runNew(ctx context.Context, path string, lines int, force bool, out printer) error {
	if lines < 1 {
		return fmt.Errorf("--lines must be at least 1, got %d", lines)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	ed := editor.New(editor.Options{
		BaseX:  c.config.Editor.BaseX,
		BaseY:  c.config.Editor.BaseY,
		Logger: loggerFromContext(ctx),
		Hooks:  c.hooks(),
	})

	var prev *editor.Node
	for i := range lines {
		n := ed.AddNode(ctx)
		n.SetName("Speaker")
		n.SetText(fmt.Sprintf("Line %d.", i+1))
		if prev != nil {
			if err := ed.Connect(prev.Handle(), 0, n.Handle(), 0); err != nil {
				return err
			}
		}
		prev = n
	}

	if err := ed.Save(ctx, path); err != nil {
		return err
	}
	out.success("Created %d lines", lines)
	out.file(path)
	return nil
}
