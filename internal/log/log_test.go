package log_test

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "techhub/internal/log"
)

func capture(t *testing.T, fn func()) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	}()
	fn()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestWriteWithoutRequest(t *testing.T) {
	entries := capture(t, func() {
		applog.Error(nil, "cart.rollback", errors.New("boom"), map[string]any{"product_id": 5})
		applog.Warn("catalog.load_more.fail", nil, nil)
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "cart.rollback", entries[0]["action"])
	assert.Equal(t, "boom", entries[0]["err"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.NotContains(t, entries[1], "path")
}
