package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/parley/pkg/dialogue"
)

// WriteJSON encodes a conversation as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(conv *dialogue.Conversation, w io.Writer) error {
	out := dialogue.Conversation{Lines: make([]dialogue.Dialogue, len(conv.Lines))}
	for i, l := range conv.Lines {
		out.Lines[i] = l.Clone()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the indented JSON document for conv.
func Marshal(conv *dialogue.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(conv, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a conversation to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(conv *dialogue.Conversation, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(conv, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
