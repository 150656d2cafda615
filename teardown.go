package menu

import (
	"context"

	"github.com/goliatone/go-menu/pkg/lifecycle"
)

// BindTeardown saves every registered tree when watcher detects the end of a
// session and when ctx is done or the process receives SIGINT/SIGTERM. The
// returned function releases the signal handler.
func (m *Manager) BindTeardown(ctx context.Context, watcher *lifecycle.EndWatcher) (stop func()) {
	save := func(reason string) func() {
		return func() {
			if err := m.SaveAll(context.Background()); err != nil {
				m.logError("teardown_"+reason, ErrorFileIO, "", err)
			}
		}
	}
	if watcher != nil {
		watcher.OnEnd(save("end"))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return lifecycle.OnSignal(ctx, save("signal"))
}
