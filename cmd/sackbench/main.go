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

	"github.com/bakalover/sack/bench"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := bench.DefaultConfig()
	cmd := &cobra.Command{
		Use:          "sackbench [CONFIG-FILE]",
		Short:        "Contention benchmark for the lock-free wake set",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := bench.DefaultConfig()
			if len(args) == 1 {
				loaded, err := bench.LoadConfig(args[0])
				if err != nil {
					return err
				}
				c = loaded
			}
			overlay(cmd, c, flags)
			return run(cmd.Context(), c)
		},
	}
	cmd.Flags().IntVar(&flags.Workers, "workers", flags.Workers, "Number of concurrent goroutines")
	cmd.Flags().IntVar(&flags.Iterations, "iterations", flags.Iterations, "Steps per goroutine")
	cmd.Flags().IntVar(&flags.WakeEvery, "wake-every", flags.WakeEvery, "Wake all on every n-th global step")
	cmd.Flags().StringVar(&flags.Target, "target", flags.Target, "Collection to measure (sack, locked)")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "Serve /metrics on this address while running")
	return cmd
}

// Explicit flags win over the config file.
func overlay(cmd *cobra.Command, c, flags *bench.Config) {
	set := cmd.Flags().Changed
	if set("workers") {
		c.Workers = flags.Workers
	}
	if set("iterations") {
		c.Iterations = flags.Iterations
	}
	if set("wake-every") {
		c.WakeEvery = flags.WakeEvery
	}
	if set("target") {
		c.Target = flags.Target
	}
	if set("log-level") {
		c.LogLevel = flags.LogLevel
	}
	if set("metrics-addr") {
		c.MetricsAddr = flags.MetricsAddr
	}
}

func setupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func run(ctx context.Context, c *bench.Config) error {
	logger := setupLogger(c.LogLevel)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := bench.NewMetrics(registry)

	if c.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{
			Addr:              c.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.WithField("addr", c.MetricsAddr).Info("serving metrics")
	}

	r, err := bench.Run(ctx, c, logger, metrics)
	if err != nil {
		return err
	}
	fmt.Println(r)
	return nil
}
