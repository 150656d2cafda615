package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// DefaultSignals are watched when OnSignal is given none.
var DefaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// OnSignal runs fn once when one of signals arrives or ctx is done. The
// returned stop function releases the signal handler; fn does not run if stop
// is called first.
func OnSignal(ctx context.Context, fn func(), signals ...os.Signal) (stop func()) {
	if len(signals) == 0 {
		signals = DefaultSignals
	}
	notify, cancel := signal.NotifyContext(ctx, signals...)
	stopped := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-notify.Done():
			select {
			case <-stopped:
				return
			default:
			}
			if fn != nil {
				fn()
			}
		case <-stopped:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopped)
			cancel()
			<-done
		})
	}
}
