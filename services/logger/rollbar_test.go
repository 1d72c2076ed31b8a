package logsvc

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewRollbarLogger(&buf, &core.Config{Env: "TEST", AppName: "Gyaan Buddy", Debug: debug})
	l.Enable(false)
	return l, &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestRollbarLogger(t *testing.T) {
	l, buf := newTestLogger(true)

	l.Info("logged in", auth.User{ID: "u1", Name: "Asha", Email: "asha@school.in"})
	l.Warn("api request failed", map[string]interface{}{"path": "/students", "status": 500})
	l.Error("removing auth token", errors.New("disk full"))

	got := lines(t, buf)
	require.Len(t, got, 3)

	assert.Equal(t, "info", got[0]["level"])
	assert.Equal(t, "logged in", got[0]["message"])
	assert.Equal(t, "u1", got[0]["user"])
	assert.Equal(t, "Gyaan Buddy", got[0]["app"])

	assert.Equal(t, "warn", got[1]["level"])
	assert.Equal(t, "/students", got[1]["path"])
	assert.Equal(t, 500.0, got[1]["status"])

	assert.Equal(t, "error", got[2]["level"])
	assert.Equal(t, "disk full", got[2]["error"])
}

func TestRollbarLogger_level(t *testing.T) {
	l, buf := newTestLogger(false)
	l.Debug("hidden")
	l.Info("shown")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "shown", got[0]["message"])
}

func TestRollbarLogger_Fatal(t *testing.T) {
	var code int
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = os.Exit }()

	l, buf := newTestLogger(true)
	l.Fatal("cannot start")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "cannot start")
}
