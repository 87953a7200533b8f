package servehttp

import (
	"academy/common"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const DefaultShutdownTimeout = 3 * time.Second

// StartHTTPServer serves engine on HTTP_ADDR (default ":8080") until SIGINT or SIGTERM is received.
func StartHTTPServer(engine *gin.Engine) error {
	// kill (no param) default send syscall.SIGTERM
	// kill -2 send syscall.SIGINT
	// kill -9 send syscall.SIGKILL, can't be caught
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return RunHTTPServer(ctx, common.EnvString("HTTP_ADDR", ":8080"), engine, DefaultShutdownTimeout)
}

// RunHTTPServer serves handler on addr until ctx is done, then shuts down gracefully within timeout.
func RunHTTPServer(ctx context.Context, addr string, handler http.Handler, timeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			logrus.Errorf("http server failed: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logrus.Infof("[QUIT] shutdown signal has been received, the service will exit in %v", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("[QUIT] http server shutdown failed: %v", err)
		return err
	}
	logrus.Info("[QUIT] http server is shutdown gracefully, new request will be rejected.")
	return nil
}
