// Package nodelink renders conversation graphs as node-link diagrams.
//
// # Overview
//
// Each line becomes a rounded box labelled with its id and speaker. A line
// without choices contributes one arrow for its own link; a line with
// choices contributes one labelled arrow per choice. Links that point at a
// line that does not exist end at a red "missing" marker, and the first
// line of the conversation is drawn in bold as the entry point.
//
// # Usage
//
// Convert a conversation to DOT, then render it:
//
//	dot := nodelink.ToDOT(conv, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] accepts any [Format]; PNG output is produced by Graphviz
// directly and needs no external tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
