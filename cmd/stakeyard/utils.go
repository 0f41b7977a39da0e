// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeyard/stakeyard/config"
	"github.com/stakeyard/stakeyard/log"
	"github.com/stakeyard/stakeyard/metrics"
)

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) {
	var level slog.Level
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		level = slog.LevelError + 4 // silence
	case 1:
		level = slog.LevelError
	case 2:
		level = slog.LevelWarn
	case 3:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}

	// JSON logs when asked for, or when stderr isn't a terminal
	if ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetRootHandler(log.NewJSONHandler(os.Stderr, level))
	} else {
		log.SetRootHandler(log.NewTextHandler(os.Stderr, level))
	}
}

// loadConfig reads the config file and overlays the CLI flags on top.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if v := ctx.String(dataDirFlag.Name); v != "" {
		cfg.DataDir = v
	}
	if v := ctx.String(apiAddrFlag.Name); v != "" {
		cfg.APIAddr = v
	}
	if v := ctx.String(apiCorsFlag.Name); v != "" {
		cfg.AllowedOrigins = v
	}
	if v := ctx.String(metricsAddrFlag.Name); v != "" {
		cfg.MetricsAddr = v
	}
	return cfg, nil
}

func startAPIServer(addr string, handler http.HandlerFunc) (*http.Server, string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	srv := &http.Server{Handler: handler}
	go func() {
		srv.Serve(listener)
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func startMetricsServer(addr string) (*http.Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: mux}
	go func() {
		srv.Serve(listener)
	}()
	return srv, nil
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func handleExitSignal() context.Context {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
