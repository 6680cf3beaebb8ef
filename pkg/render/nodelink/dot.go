package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/parley/pkg/dialogue"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the line text and text speed to node labels.
	// When false, only the id and speaker are shown.
	Detailed bool

	// MaxText truncates line text in detailed labels. Zero means 40.
	MaxText int
}

// Format selects the Graphviz output format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ToDOT converts a conversation to Graphviz DOT source.
func ToDOT(conv *dialogue.Conversation, opts Options) string {
	if opts.MaxText <= 0 {
		opts.MaxText = 40
	}
	index := conv.IndexByID()

	var buf bytes.Buffer
	buf.WriteString("digraph conversation {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, l := range conv.Lines {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(l, opts))}
		if i == 0 {
			attrs = append(attrs, "penwidth=2.5")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(l.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range conv.Lines {
		for _, e := range l.Edges() {
			if !e.Resolved() {
				continue
			}
			var attrs []string
			if e.Kind == dialogue.EdgeChoice {
				attrs = append(attrs, fmt.Sprintf("label=%q", choiceLabel(l.Choices[e.Choice].Text, e.Choice)))
			}
			to := nodeID(e.Target)
			if _, ok := index[e.Target]; !ok {
				to = missingID(l.ID, e)
				fmt.Fprintf(&buf, "  %s [label=\"missing %d\", shape=octagon, color=red, fontcolor=red];\n", to, e.Target)
				attrs = append(attrs, "color=red", "style=dashed")
			}
			fmt.Fprintf(&buf, "  %s -> %s", nodeID(l.ID), to)
			if len(attrs) > 0 {
				fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string {
	if id < 0 {
		return fmt.Sprintf("line_m%d", -id)
	}
	return fmt.Sprintf("line_%d", id)
}

func missingID(from int, e dialogue.Edge) string {
	return fmt.Sprintf("missing_%s_%d", strings.TrimPrefix(nodeID(from), "line_"), e.Slot())
}

func fmtLabel(l dialogue.Dialogue, opts Options) string {
	head := strconv.Itoa(l.ID)
	if l.Name != "" {
		head += ": " + l.Name
	}
	if !opts.Detailed {
		return head
	}
	parts := []string{head}
	if l.Text != "" {
		parts = append(parts, truncate(l.Text, opts.MaxText))
	}
	parts = append(parts, fmt.Sprintf("speed: %g", l.TextSpeed))
	return strings.Join(parts, "\n")
}

func choiceLabel(text string, i int) string {
	if text == "" {
		return fmt.Sprintf("#%d", i)
	}
	return truncate(text, 24)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := Render(ctx, dot, FormatSVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// Render renders DOT source in the given format.
func Render(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container instead of carrying Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
