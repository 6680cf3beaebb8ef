package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds document names accepted by stores and the HTTP API.
const maxNameLength = 128

// ValidateDocumentName validates a document name before it is used as a
// storage key or file name. Names are simple identifiers, never paths.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - No leading dot (hidden files)
//   - Maximum length of 128 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "document name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "document name contains invalid characters")
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidName, "document name cannot contain path separators")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "document name contains invalid characters: %q", "..")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "document name cannot start with a dot")
	}
	return nil
}
