package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/io"
)

// execute runs the command tree with args and returns everything printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestNewValidateRender(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")

	out, err := execute(t, "new", path, "--lines", "3")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(out, "Created 3 lines") {
		t.Errorf("new output = %q", out)
	}

	conv, err := io.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	var links []int
	for _, l := range conv.Lines {
		links = append(links, l.ConnectsTo)
	}
	if want := []int{1, 2, -1}; !slices.Equal(links, want) {
		t.Errorf("links = %v, want %v", links, want)
	}

	out, err = execute(t, "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "3 lines, 0 warnings") {
		t.Errorf("validate output = %q", out)
	}
	if !strings.Contains(out, "Line 2.") {
		t.Errorf("validate table missing line text:\n%s", out)
	}

	if _, err := execute(t, "render", path, "-f", "dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "story.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	for _, want := range []string{"line_0 -> line_1;", "line_1 -> line_2;"} {
		if !strings.Contains(string(dot), want) {
			t.Errorf("dot missing %q", want)
		}
	}
}

func TestNewRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "new", path); err == nil {
		t.Fatal("new over an existing file should fail without --force")
	}
	if _, err := execute(t, "new", path, "--force", "-n", "1"); err != nil {
		t.Fatalf("new --force: %v", err)
	}
	conv, err := io.ImportJSON(path)
	if err != nil || conv.Len() != 1 {
		t.Fatalf("after --force: len=%v err=%v", conv, err)
	}
}

func TestNewRejectsZeroLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.json")
	if _, err := execute(t, "new", path, "--lines", "0"); err == nil {
		t.Fatal("expected error for --lines 0")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written")
	}
}

func TestValidateDangling(t *testing.T) {
	a := dialogue.NewDialogue(0)
	a.Text = "Hello"
	a.ConnectsTo = 5
	path := filepath.Join(t.TempDir(), "dangling.json")
	if err := io.ExportJSON(&dialogue.Conversation{Lines: []dialogue.Dialogue{a}}, path); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "validate", "-q", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "1 warnings") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "validate", "--strict", path); err == nil {
		t.Error("--strict should fail on dangling links")
	}
}

func TestValidateMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"empty conversation", `{"_conversation": []}`},
		{"id gap", `{"_conversation": [{"_id": 0}, {"_id": 2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := execute(t, "validate", path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.json")
	if _, err := execute(t, "new", path); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "render", path, "-f", "gif"); err == nil {
		t.Error("expected error for gif")
	}
	if _, err := os.Stat(filepath.Join(dir, "story.gif")); !os.IsNotExist(err) {
		t.Error("no output should be written")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"story.json", "svg", "story.svg"},
		{"dir/story.json", "dot", "dir/story.dot"},
		{"story", "png", "story.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "parley.toml")

	if err := os.WriteFile(cfgPath, []byte("[playback]\nmin_tick_ms = 25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", cfgPath, "version"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := c.Config().Playback.MinTickMS; got != 25 {
		t.Errorf("MinTickMS = %d, want 25", got)
	}

	if err := os.WriteFile(cfgPath, []byte("[playback]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfgPath, "version"); err == nil {
		t.Error("unknown key should fail")
	}
	if _, err := execute(t, "--config", filepath.Join(dir, "missing.toml"), "version"); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("a\nb", 10); got != "a b" {
		t.Errorf("got %q", got)
	}
	if got := truncateText("abcdef", 4); got != "abc…" {
		t.Errorf("got %q", got)
	}
}
