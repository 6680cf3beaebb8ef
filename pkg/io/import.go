package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/errors"
)

// ReadJSON decodes a conversation document from r.
//
// ReadJSON returns a DOCUMENT_MALFORMED error if:
//   - The JSON is malformed or not an object
//   - The _conversation array is missing, null or empty
//   - Anything other than whitespace follows the document
//
// The returned conversation is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dialogue.Conversation, error) {
	var conv dialogue.Conversation
	dec := json.NewDecoder(r)
	if err := dec.Decode(&conv); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentMalformed, err, "decode conversation")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, errors.New(errors.ErrCodeDocumentMalformed, "unexpected data after conversation document")
	}
	if len(conv.Lines) == 0 {
		return nil, errors.New(errors.ErrCodeDocumentMalformed, "conversation data is missing or empty")
	}
	return &conv, nil
}

// Unmarshal decodes a conversation document held in memory.
func Unmarshal(data []byte) (*dialogue.Conversation, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded conversation.
//
// A missing file yields DOCUMENT_NOT_FOUND. Decoding errors are the same as
// [ReadJSON], annotated with the path.
func ImportJSON(path string) (*dialogue.Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeDocumentNotFound, err, "file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()

	conv, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return conv, nil
}
