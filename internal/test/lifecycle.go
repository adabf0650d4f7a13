package test

import (
	"go.uber.org/fx"
)

// LifecycleRecorder collects hooks registered by the server and dispatcher
// wiring so tests can invoke them directly instead of running a full fx app.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append stores hook for later invocation.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub signals when application code requests termination, e.g.
// after a server listen failure.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown notifies tests about graceful termination. The send never
// blocks: a test that does not care about the signal may leave Called nil
// or unread.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}
