package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/virusnet/pkg/logging"
)

// HandleSignals returns a context cancelled on SIGINT or SIGTERM. SIGHUP
// triggers gs.Reload. Signal handling stops when the returned context is
// done.
func HandleSignals(parent context.Context, gs *GracefulServer) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGINT, syscall.SIGTERM:
					gs.logger.Info("received signal, starting graceful shutdown", logging.String("signal", sig.String()))
					cancel()
					return
				case syscall.SIGHUP:
					_ = gs.Reload()
				}
			}
		}
	}()

	return ctx
}
