package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tendril/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchScript = `---
id: demo
entry: Start
---
title: Start
---
Hello from the script.
[[End]]
===
title: End
---
That is all.
===`

func writeRepo(t *testing.T) string {
	t.Helper()
	dir, _ := testutils.SetupTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.md"), []byte(watchScript), 0o644))
	return dir
}

func fastConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: memory\nplayer:\n  tick_interval: 1ms\n"), 0o644))
	return path
}

func TestRunSession_AutoPilotJSON(t *testing.T) {
	var out bytes.Buffer
	opts := RunOptions{
		RepoPath:   writeRepo(t),
		ConfigPath: fastConfig(t),
		JSON:       true,
		AutoPilot:  true,
		In:         strings.NewReader(""),
		Out:        &out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, RunSession(ctx, opts))

	assert.Contains(t, out.String(), `"type":"frame"`)
	assert.Contains(t, out.String(), "Hello from the script.")
	assert.Contains(t, out.String(), "That is all.")
}

func TestRunSession_HeadlessQuit(t *testing.T) {
	var out bytes.Buffer
	opts := RunOptions{
		RepoPath:   writeRepo(t),
		ConfigPath: fastConfig(t),
		Headless:   true,
		In:         strings.NewReader("q\n"),
		Out:        &out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, RunSession(ctx, opts))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCommandRegistry_PicksUpRepoConfig(t *testing.T) {
	dir := writeRepo(t)
	yaml := "commands:\n  - name: chime\n    command: /bin/true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commands.yaml"), []byte(yaml), 0o644))

	reg, err := commandRegistry(RunOptions{RepoPath: dir}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, []string{"chime"}, reg.Names())
}

func TestCommandRegistry_NoConfigMeansNoRegistry(t *testing.T) {
	reg, err := commandRegistry(RunOptions{RepoPath: writeRepo(t)}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestCommandRegistry_ExplicitMissingPathFails(t *testing.T) {
	opts := RunOptions{
		RepoPath: writeRepo(t),
		Commands: filepath.Join(t.TempDir(), "nope.yaml"),
	}
	_, err := commandRegistry(opts, testLogger())
	assert.ErrorContains(t, err, "commands config")
}

func TestRunSession_BadRepoPath(t *testing.T) {
	opts := RunOptions{
		RepoPath:   filepath.Join(t.TempDir(), "empty"),
		ConfigPath: fastConfig(t),
		Headless:   true,
		In:         strings.NewReader(""),
		Out:        &bytes.Buffer{},
	}
	err := RunSession(context.Background(), opts)
	assert.Error(t, err)
}
