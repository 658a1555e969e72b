package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"codeclip/pkg/clipboard"
	"codeclip/pkg/config"
)

const testConfigPath = "/cfg/config.json"

type noGit struct{}

func (noGit) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return nil, errors.New("git not available")
}

type harness struct {
	fs        afero.Fs
	clipboard *clipboard.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fs: afero.NewMemMapFs(), clipboard: clipboard.NewMemory("")}

	saved := *app
	app.Logger = zaptest.NewLogger(t)
	app.Fs = h.fs
	app.Clipboard = h.clipboard
	app.Runner = noGit{}
	app.Interactive = false
	t.Cleanup(func() { *app = saved })
	return h
}

func (h *harness) writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(h.fs, path, []byte(content), 0o644))
}

// resetFlags restores every flag to its default so commands can run repeatedly in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)
	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetIn(&bytes.Buffer{})
	RootCmd.SetArgs(append([]string{"--config", testConfigPath}, args...))
	err := RootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCopy_WritesFilteredBlobToClipboard(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/README.md", "# Title")
	h.writeFile(t, "/work/main.go", "package main")
	h.writeFile(t, "/work/node_modules/lib/index.md", "skip me")

	_, stderr, err := run(t, "copy", "/work")
	require.NoError(t, err)

	text, err := h.clipboard.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "=== README.md ===\n# Title\n", text)
	assert.Contains(t, stderr, "Copied 1 files to the clipboard")
}

func TestCopy_ProjectTypeWidensSelection(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/README.md", "# Title")
	h.writeFile(t, "/work/main.go", "package main")

	_, _, err := run(t, "config", "project-type", "add", "go")
	require.NoError(t, err)

	stdout, _, err := run(t, "copy", "/work", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, "=== README.md ===\n# Title\n\n=== main.go ===\npackage main\n", stdout)

	text, err := h.clipboard.ReadText()
	require.NoError(t, err)
	assert.Empty(t, text, "stdout output must not touch the clipboard")
}

func TestCopy_LargeResultNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, testConfigPath, `{"largeResultThreshold": 1}`)
	h.writeFile(t, "/work/a.md", "a")
	h.writeFile(t, "/work/b.md", "b")

	_, _, err := run(t, "copy", "/work")
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	_, _, err = run(t, "copy", "/work", "--yes")
	require.NoError(t, err)
	text, _ := h.clipboard.ReadText()
	assert.Equal(t, "=== a.md ===\na\n\n=== b.md ===\nb\n", text)
}

func TestCopy_OutputFile(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/notes.txt", "hello")
	require.NoError(t, h.fs.MkdirAll("/out", 0o755))

	_, stderr, err := run(t, "copy", "/work", "-o", "/out/blob.txt", "--fenced")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Copied 1 files to /out/blob.txt")

	data, err := afero.ReadFile(h.fs, "/out/blob.txt")
	require.NoError(t, err)
	assert.Equal(t, "=== notes.txt ===\n```txt\nhello\n```\n", string(data))
}

func TestCopy_StdoutAndOutputConflict(t *testing.T) {
	newHarness(t)
	_, _, err := run(t, "copy", "/work", "--stdout", "-o", "x.txt")
	assert.ErrorContains(t, err, "cannot be combined")
}

func TestCopy_EmptySelectionWarns(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/image.png", "png")

	_, stderr, err := run(t, "copy", "/work")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No files matched")
}

func TestCopyFiles_AppliesFiltersUnlessRaw(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/src/app.go", "package src")
	h.writeFile(t, "/work/docs/guide.md", "guide")

	stdout, _, err := run(t, "copy-files", "--root", "/work", "--stdout", "src/app.go", "docs/guide.md")
	require.NoError(t, err)
	assert.Equal(t, "=== docs/guide.md ===\nguide\n", stdout)

	stdout, _, err = run(t, "copy-files", "--root", "/work", "--stdout", "--raw", "src/app.go")
	require.NoError(t, err)
	assert.Equal(t, "=== src/app.go ===\npackage src\n", stdout)
}

func TestParse_FromClipboardAndCompare(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/a.md", "alpha")
	h.writeFile(t, "/work/b.md", "old")
	require.NoError(t, h.clipboard.WriteText("=== a.md ===\nalpha\n\n=== b.md ===\nnew\n\n=== c.md ===\ngone\n"))

	stdout, stderr, err := run(t, "parse", "--compare", "/work")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Parsed 3 code blocks")
	assert.Regexp(t, `identical\s+a\.md`, stdout)
	assert.Regexp(t, `modified\s+b\.md`, stdout)
	assert.Regexp(t, `missing\s+c\.md`, stdout)
	assert.Contains(t, stdout, "1 identical, 1 modified, 1 missing, 0 unreadable")
}

func TestParse_FromFileWithoutBlocks(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/in.txt", "nothing to see here")

	_, stderr, err := run(t, "parse", "-i", "/in.txt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No code blocks found")
}

func TestParse_ClipboardFailure(t *testing.T) {
	h := newHarness(t)
	h.clipboard.Err = clipboard.ErrUnavailable

	_, _, err := run(t, "parse")
	assert.ErrorIs(t, err, clipboard.ErrUnavailable)
}

func TestTree_ListsIncludedFiles(t *testing.T) {
	h := newHarness(t)
	h.writeFile(t, "/work/docs/guide.md", "guide")
	h.writeFile(t, "/work/README.md", "readme")
	h.writeFile(t, "/work/dist/out.md", "built")

	stdout, _, err := run(t, "tree", "/work")
	require.NoError(t, err)
	assert.Contains(t, stdout, "work/\n")
	assert.Contains(t, stdout, "docs")
	assert.Contains(t, stdout, "guide.md")
	assert.Contains(t, stdout, "README.md")
	assert.NotContains(t, stdout, "out.md")
	assert.Contains(t, stdout, "2 files included")
}

func TestConfig_ExtensionLifecycle(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := run(t, "config", "extension", "add", "TS")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Extension TS added")

	_, _, err = run(t, "config", "extension", "add", ".ts")
	assert.ErrorIs(t, err, config.ErrDuplicate)

	_, _, err = run(t, "config", "extension", "add", ".cob", "--project-type", "cobol")
	assert.ErrorIs(t, err, config.ErrUnknownProjectType)

	stdout, _, err = run(t, "config", "extension", "add", ".astro", "-p", "web")
	require.NoError(t, err)
	assert.Contains(t, stdout, "for project type web")

	data, err := afero.ReadFile(h.fs, testConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `".ts"`)

	_, _, err = run(t, "config", "extension", "remove", ".ts")
	require.NoError(t, err)
	_, _, err = run(t, "config", "extension", "remove", ".ts")
	assert.ErrorIs(t, err, config.ErrNotFound)
}

func TestConfig_ToggleAndShow(t *testing.T) {
	newHarness(t)

	stdout, _, err := run(t, "config", "toggle", "filterUsingVersionControl")
	require.NoError(t, err)
	assert.Contains(t, stdout, "filterUsingVersionControl enabled")

	_, _, err = run(t, "config", "toggle", "nonsense")
	assert.ErrorIs(t, err, config.ErrUnknownSetting)

	stdout, _, err = run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"filterUsingVersionControl": true`)

	stdout, _, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, testConfigPath)
	assert.Contains(t, stdout, ".git")
}

func TestConfig_BlacklistAndReset(t *testing.T) {
	newHarness(t)

	_, _, err := run(t, "config", "blacklist", "add", "*.snap")
	require.NoError(t, err)
	_, _, err = run(t, "config", "blacklist", "add", "   ")
	assert.ErrorIs(t, err, config.ErrEmptyValue)

	stdout, _, err := run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"*.snap"`)

	_, _, err = run(t, "config", "reset")
	require.NoError(t, err)
	stdout, _, err = run(t, "config", "show", "--json")
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"*.snap"`)
}

func TestConfig_ProjectTypeList(t *testing.T) {
	newHarness(t)
	_, _, err := run(t, "config", "project-type", "add", "Python")
	require.NoError(t, err)

	stdout, _, err := run(t, "config", "project-type", "list")
	require.NoError(t, err)
	assert.Regexp(t, `\*\s+python`, stdout)
	assert.Contains(t, stdout, "rust")
}

func TestVersion_Short(t *testing.T) {
	newHarness(t)
	stdout, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestReportError_LogsOnlyUnexpectedFailures(t *testing.T) {
	newHarness(t)
	core, logs := observer.New(zapcore.ErrorLevel)
	app.Logger = zap.New(core)

	var out bytes.Buffer
	reportError(&out, fmt.Errorf("extension %q: %w", ".ts", config.ErrDuplicate))
	assert.Contains(t, out.String(), "value already present")
	assert.Zero(t, logs.Len())

	reportError(&out, errors.New("disk full"))
	assert.Contains(t, out.String(), "disk full")
	assert.Equal(t, 1, logs.Len())
}

func TestCopy_HelpPointsToFencedForNestedFences(t *testing.T) {
	newHarness(t)
	stdout, _, err := run(t, "copy", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Use --fenced")
}
