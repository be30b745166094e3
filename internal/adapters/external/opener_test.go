package external

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpener_PrintsWithoutCommand(t *testing.T) {
	var buf bytes.Buffer
	o := NewOpener("  ", &buf, nil)

	require.NoError(t, o.Open(context.Background(), "https://api.example.com/auth/google"))
	assert.Equal(t, "Open this URL to continue: https://api.example.com/auth/google\n", buf.String())
}

func TestOpener_RunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "opened")
	script := filepath.Join(dir, "open.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf %s \"$1\" > \""+out+"\"\n"), 0o700))
	o := NewOpener(script, nil, nil)

	require.NoError(t, o.Open(context.Background(), "https://example.com/login"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/login", string(data))
}

func TestOpener_CommandFailure(t *testing.T) {
	o := NewOpener("/nonexistent/binwatch-opener", nil, nil)
	err := o.Open(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run /nonexistent/binwatch-opener")
}
