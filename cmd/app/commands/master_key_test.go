package commands

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunGenerateKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var out bytes.Buffer
	err := RunGenerateKey(logger, &out)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "SIGNING_MASTER_KEY=\"")

	// The printed key must decode to exactly 32 bytes.
	start := strings.Index(output, "SIGNING_MASTER_KEY=\"") + len("SIGNING_MASTER_KEY=\"")
	end := strings.Index(output[start:], "\"")
	require.Greater(t, end, 0)

	key, err := base64.StdEncoding.DecodeString(output[start : start+end])
	require.NoError(t, err)
	require.Len(t, key, 32)
}

func TestRunGenerateKeyUnique(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var first, second bytes.Buffer
	require.NoError(t, RunGenerateKey(logger, &first))
	require.NoError(t, RunGenerateKey(logger, &second))

	require.NotEqual(t, first.String(), second.String())
}
