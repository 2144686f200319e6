// Package testutils provides shared testing utilities and helper functions
package testutils

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ReadJSONLines reads a backup output file and returns one decoded object
// per line, failing the test on malformed content.
func ReadJSONLines(t *testing.T, path string) []map[string]json.RawMessage {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading backup file %s", path)

	var lines []map[string]json.RawMessage
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(line), &obj),
			"line is not a standalone JSON object: %s", line)
		lines = append(lines, obj)
	}
	return lines
}

// CountEntities decodes the envelope value for kind on each line of a backup
// file and returns the total number of entities across all lines.
func CountEntities(t *testing.T, path string, kind string) int {
	t.Helper()

	total := 0
	for _, line := range ReadJSONLines(t, path) {
		raw, ok := line[kind]
		require.True(t, ok, "envelope missing key %q", kind)
		var entities []json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &entities))
		total += len(entities)
	}
	return total
}

