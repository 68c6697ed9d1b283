// @title framegen API
// @version 1.0
// @description API for running frame extraction jobs and inspecting their output.
// @host localhost:8080
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"framegen/internal/config"
	"framegen/internal/daemon"
	_ "framegen/internal/docs"
	"framegen/internal/logger"
	"framegen/internal/media"
	"framegen/internal/publish"
)

func main() {
	cfg, err := config.LoadServer()
	fatalOnErr(err, "load server config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	// Job defaults come from FRAMEGEN_CONFIG and FRAMEGEN_* variables.
	defaults, err := config.Load(cfg.JobDefaults)
	fatalOnErr(err, "load job defaults")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := publish.FromConfig(ctx, defaults.Publish)
	fatalOnErr(err, "configure publishing")
	if pub == nil {
		log.Info("frame publishing disabled")
	}

	server := daemon.NewServer(cfg, defaults, media.NewFFmpeg(), pub, log)
	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.Bool("stateless", cfg.Stateless))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	server.Shutdown()
	log.Info("framegen daemon stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
