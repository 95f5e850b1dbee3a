package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "bad input")
	assert.Equal(t, "bad input", plain.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(plain))

	inner := errors.New("file missing")
	wrapped := WrapExitError(ExitFailure, "load failed", inner)
	assert.Equal(t, "load failed: file missing", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))

	// Wrapping preserves the code through error chains.
	chained := fmt.Errorf("outer: %w", plain)
	assert.Equal(t, ExitCommandError, GetExitCode(chained))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatterText(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, out.Success("hello"))
	assert.Equal(t, "hello\n", buf.String())

	buf.Reset()
	require.NoError(t, out.Error("boom", "details"))
	assert.Contains(t, buf.String(), "Error: boom")
	assert.Contains(t, buf.String(), "details")
}

func TestOutputFormatterJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, out.Success(map[string]int{"n": 3}))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, out.Error("boom", nil))
	resp = CLIResponse{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "boom", resp.Error.Message)
}
