package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/trezcool/gyaanbuddy/core"
)

// Entry is a message recorded by Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records log entries instead of printing them.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Has reports whether a message containing substr was logged at level.
func (l *Logger) Has(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

func (l *Logger) String() string {
	var b strings.Builder
	for _, e := range l.Entries() {
		fmt.Fprintf(&b, "[%s] %s %v\n", e.Level, e.Msg, e.Args)
	}
	return b.String()
}

// SetToken stores token as the persisted session of storage.
func SetToken(t *testing.T, storage core.LocalStorage, token string) {
	t.Helper()
	if err := storage.Set(context.Background(), core.TokenKey, token); err != nil {
		t.Fatalf("SetToken() failed: %v", err)
	}
}

// Token returns the persisted session token of storage.
func Token(t *testing.T, storage core.LocalStorage) string {
	t.Helper()
	token, err := storage.Get(context.Background(), core.TokenKey)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}
