package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/io"
	"github.com/matzehuels/parley/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; derived from the input when empty
	format   string // "dot", "svg" or "png"
	detailed bool   // include line text and speed in node labels
	maxText  int    // truncate label text to this many characters
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a conversation graph",
		Long: `Render a conversation as a node-link diagram.

Lines become boxes and links become arrows; choice arrows carry the choice
text. Links to lines that do not exist are drawn in red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], opts, printer{cmd.OutOrStdout()})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show line text and text speed")
	cmd.Flags().IntVar(&opts.maxText, "max-text", 0, "truncate line text in detailed labels (default 40)")
	return cmd
}

func runRender(ctx context.Context, input string, opts renderOpts, out printer) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	conv, err := io.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %d lines from %s", conv.Len(), input)

	data, err := renderGraph(ctx, conv, opts)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = outputPath(input, opts.format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	prog.done("Rendered " + path)
	out.success("Rendered %d lines", conv.Len())
	out.file(path)
	return nil
}

func renderGraph(ctx context.Context, conv *dialogue.Conversation, opts renderOpts) ([]byte, error) {
	dot := nodelink.ToDOT(conv, nodelink.Options{Detailed: opts.detailed, MaxText: opts.maxText})
	switch opts.format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPNG:
		return nodelink.Render(ctx, dot, nodelink.FormatPNG)
	default:
		return nil, fmt.Errorf("unknown format %q (must be dot, svg or png)", opts.format)
	}
}

// outputPath swaps the input's extension for the format's.
func outputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}
