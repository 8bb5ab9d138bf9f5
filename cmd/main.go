package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hazcod/pwcheck/config"
	"github.com/hazcod/pwcheck/pkg/logging"
	"github.com/hazcod/pwcheck/pkg/router"
	"github.com/hazcod/pwcheck/pkg/service/health"
	"github.com/hazcod/pwcheck/pkg/service/hibp"
	"github.com/hazcod/pwcheck/pkg/service/wordlist"
	"github.com/sirupsen/logrus"
)

func main() {
	bootLogger := logrus.New()

	cfgPath := flag.String("config", "", "path to config file")
	logLevel := flag.String("log", "", "log level")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		bootLogger.WithError(err).Fatal("error loading config")
	}

	levelToUse := cfg.Log.Level
	if *logLevel != "" {
		levelToUse = *logLevel
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level: levelToUse,
		File:  cfg.Log.File,
		Debug: cfg.Debug(),
	})
	if err != nil {
		bootLogger.WithError(err).Fatal("error setting up logging")
	}
	defer logCloser.Close()

	logger.WithField("level", logger.GetLevel().String()).Info("set log level")

	// --

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Release:     health.Version,
			Environment: cfg.HTTP.Mode,
		}); err != nil {
			logger.WithError(err).Fatal("error initializing sentry")
		}
		defer sentry.Flush(5 * time.Second)
		logger.Info("registered sentry error reporting")
	}

	wordlistPath := cfg.Wordlist.Path
	if wordlistPath == "" {
		wordlistPath = wordlist.DefaultPath()
	}
	logger.WithField("path", wordlistPath).Debug("using local wordlist")

	hibpClient := hibp.NewClient(logger,
		hibp.WithBaseURL(cfg.HIBP.BaseURL),
		hibp.WithTimeout(cfg.HIBP.Timeout),
	)

	handler := router.New(logger, router.Options{
		Breach:       hibpClient,
		Wordlist:     wordlist.NewScanner(logger, wordlistPath),
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
	})

	// ---

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// wordlist scans can be slow
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("listener", server.Addr).WithField("mode", cfg.HTTP.Mode).
			Info("started server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
