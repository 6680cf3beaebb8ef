// Package buildinfo carries the version stamped into a parley binary.
//
// Release builds set the variables with -ldflags, for example:
//
//	go build -ldflags "-X github.com/matzehuels/parley/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/parley/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/parley
//
// Development builds report "dev".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp as a value, for JSON responses.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the multi-line form printed by `parley version`.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s)\n", Version, Commit)
}
