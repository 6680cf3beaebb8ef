// Package render groups the visual output formats for conversation graphs.
//
// The [nodelink] subpackage draws a conversation as a Graphviz node-link
// diagram: one box per line, one arrow per resolved link, with choice labels
// on the arrows and unresolved links drawn to a marker node so authors can
// spot them.
package render
