package alert

import (
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// WatchSignals returns a flag that is set once SIGINT or SIGTERM arrives,
// and a function that stops watching.
func WatchSignals(logger *slog.Logger) (*atomic.Bool, func()) {
	var stopping atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Debug("received signal, closing popup", "signal", sig)
			stopping.Store(true)
		case <-done:
		}
	}()

	return &stopping, func() {
		signal.Stop(sigCh)
		close(done)
	}
}
