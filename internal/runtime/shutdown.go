package runtime

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// SetupGracefulShutdown cancels on the first SIGINT/SIGTERM. A second signal
// exits at once, for when the final publish or flush hangs.
func SetupGracefulShutdown(cancel context.CancelFunc, logger *log.Logger) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go watch(sigCh, cancel, logger, os.Exit)
}

func watch(sigCh <-chan os.Signal, cancel context.CancelFunc, logger *log.Logger, exit func(int)) {
	s := <-sigCh
	logger.Printf("[shutdown] received %v, stopping (signal again to force)", s)
	cancel()
	s = <-sigCh
	logger.Printf("[shutdown] received %v again, exiting without cleanup", s)
	exit(1)
}
