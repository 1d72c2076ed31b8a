package apisvc

import "sync/atomic"

type guardState int32

const (
	guardIdle guardState = iota
	guardLoggingOut
)

func (s guardState) String() string {
	if s == guardLoggingOut {
		return "logging out"
	}
	return "idle"
}

// logoutGuard makes the logout cascade fire once per session.
// Only trip moves it out of idle, and only rearm moves it back.
type logoutGuard struct {
	v atomic.Int32
}

func (g *logoutGuard) trip() bool {
	return g.v.CompareAndSwap(int32(guardIdle), int32(guardLoggingOut))
}

func (g *logoutGuard) rearm() {
	g.v.Store(int32(guardIdle))
}

func (g *logoutGuard) state() guardState {
	return guardState(g.v.Load())
}
