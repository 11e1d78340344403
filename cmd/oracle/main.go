package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ChadFarrow/5050-sub001/internal/config"
	"github.com/ChadFarrow/5050-sub001/internal/logger"
	"github.com/ChadFarrow/5050-sub001/internal/storage"
	"github.com/ChadFarrow/5050-sub001/internal/tracker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)

	go func() {
		cfg, err := config.Load(ctx)
		if err != nil {
			errCh <- err
			return
		}

		logger.Initialize(logger.Configuration{
			LogFile:   cfg.Log.File,
			ErrorFile: cfg.Log.ErrorFile,
			Level:     cfg.Log.Level,
			Console:   cfg.Log.Console,
		})

		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, nil); err != nil {
				logger.Warn("metrics listener stopped", zap.Error(err))
			}
		}()

		sqliteStorage := storage.NewSqliteStorage(cfg.Storage.Path)
		trackerInstance := tracker.NewTracker(ctx, cfg, sqliteStorage)

		if err := trackerInstance.VerifyOracleIdentity(); err != nil {
			panic(err)
		}

		// first pass immediately, then on the configured schedule
		trackerInstance.Run()

		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Oracle.SyncSchedule, trackerInstance.Run); err != nil {
			panic(err)
		}
		scheduler.Start()

		<-ctx.Done()
		scheduler.Stop()
		trackerInstance.Finalize()
	}()

	select {
	case err := <-errCh:
		fmt.Printf("stopping due to error: %v\n", err)
		cancel()
	case <-waitForInterrupt():
		fmt.Println("interrupt received")
		cancel()
	}
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
