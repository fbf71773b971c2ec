// cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtoohey31/uncommitted/internal/errors"
)

func execRoot(t *testing.T, opts *rootOptions, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_CountModeCleanTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))

	stdout, _, err := execRoot(t, &rootOptions{}, "-n", dir)
	require.NoError(t, err)
	assert.Equal(t, "0\n", stdout)
}

func TestRoot_MissingRootPrintsNothing(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execRoot(t, &rootOptions{}, "--count", filepath.Join(dir, "nope"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
	assert.Empty(t, stdout)
}

func TestRoot_DirectoryNamedInit(t *testing.T) {
	dir := t.TempDir()
	initDir := filepath.Join(dir, "init")
	require.NoError(t, os.MkdirAll(filepath.Join(initDir, "child"), 0755))

	t.Chdir(dir)
	stdout, _, err := execRoot(t, &rootOptions{}, "-n", "."+string(filepath.Separator)+"init")
	require.NoError(t, err)
	assert.Equal(t, "0\n", stdout)

	cmd := newRootCmd(&rootOptions{})
	assert.Contains(t, cmd.Long, "./init")
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("jobs: 1\nfollow_symlinks: true\ncommand_timeout: 5s\n"), 0644))

	opts := &rootOptions{}
	_, _, err := execRoot(t, opts, "--config", cfgPath, "--jobs", "3", "--follow-symlinks=false", "-n", dir)
	require.NoError(t, err)

	assert.Equal(t, 3, opts.cfg.Jobs)
	assert.False(t, opts.cfg.FollowSymlinks)
	assert.Equal(t, "5s", opts.cfg.CommandTimeout.String())
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()

	opts := &rootOptions{}
	stdout, stderr, err := execRoot(t, opts, "-v", "-n", dir)
	require.NoError(t, err)

	assert.Equal(t, "0\n", stdout, "diagnostics must not reach stdout")
	assert.Contains(t, stderr, "scan complete")
	assert.Equal(t, zerolog.DebugLevel, opts.level)
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("jobs: -4\n"), 0644))

	_, _, err := execRoot(t, &rootOptions{}, "--config", cfgPath, dir)
	assert.Error(t, err)
}

func TestRoot_NegativeJobsFlag(t *testing.T) {
	_, _, err := execRoot(t, &rootOptions{}, "--jobs", "-2", t.TempDir())
	assert.Error(t, err)
}

func TestRoot_GitRepoOutput(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	dirty := filepath.Join(base, "dirty")
	clean := filepath.Join(base, "nested", "clean")
	for _, repo := range []string{dirty, clean} {
		require.NoError(t, os.MkdirAll(repo, 0755))
		out, err := exec.Command("git", "-C", repo, "init", "-q").CombinedOutput()
		require.NoError(t, err, string(out))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dirty, "untracked.txt"), []byte("x"), 0644))

	stdout, _, err := execRoot(t, &rootOptions{}, base)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, dirty+" - git\n"), "stdout = %q", stdout)
	assert.Contains(t, ansi.Strip(stdout), "?? untracked.txt")
	assert.NotContains(t, stdout, clean)

	stdout, _, err = execRoot(t, &rootOptions{}, "-n", base)
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)
}

func TestRenderError(t *testing.T) {
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	err := errors.WithStackTraceAndPrefix(stderrors.New("permission denied"), "read dir %s", "/x")

	t.Run("error level shows message only", func(t *testing.T) {
		got := ansi.Strip(renderError(r, err, zerolog.ErrorLevel))
		assert.Equal(t, "uncommitted: read dir /x: permission denied", got)
	})

	t.Run("debug level adds stack trace", func(t *testing.T) {
		got := ansi.Strip(renderError(r, err, zerolog.DebugLevel))
		lines := strings.Split(got, "\n")
		require.Greater(t, len(lines), 2)
		assert.Equal(t, "uncommitted: read dir /x: permission denied", lines[0])
		assert.Equal(t, strings.Repeat("─", len(lines[0])), lines[1])
		assert.Contains(t, got, "root_test.go")
	})
}
