package graceful

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// Operation releases one resource during shutdown
type Operation func(ctx context.Context) error

// GracefulShutdown waits for SIGINT or SIGTERM, or for ctx to be cancelled,
// then runs every cleanup operation concurrently under a shared timeout.
// The returned channel is closed once all operations have finished.
func GracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]Operation, logger *slog.Logger) <-chan struct{} {
	log := logger.With(slog.String("op", "GracefulShutdown()"))

	wait := make(chan struct{})
	go func() {
		s := make(chan os.Signal, 1)
		signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(s)

		select {
		case sig := <-s:
			log.Info("shutting down", slog.String("signal", sig.String()))
		case <-ctx.Done():
			log.Info("shutting down", slog.String("reason", "context cancelled"))
		}

		ctxTimeout, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var wg sync.WaitGroup
		for key, op := range ops {
			wg.Add(1)
			go func() {
				defer wg.Done()

				log.Info("cleaning up", slog.String("process", key))
				if err := op(ctxTimeout); err != nil {
					log.Error("error clean up", slog.String("process", key), slog.String("error", err.Error()))
					return
				}
				log.Info("shutdown gracefully", slog.String("process", key))
			}()
		}

		wg.Wait()
		log.Info("graceful shutdown completed")
		close(wait)
	}()

	return wait
}
