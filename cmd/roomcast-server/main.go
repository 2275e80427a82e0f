// roomcast-server hosts a single chat room over WebSocket.
//
// Configuration comes from the environment (ROOMCAST_*, REDIS_*); flags
// override the essentials. The server exposes /ws for chat sessions,
// /ws/info and /healthz for observers, and POST /announce for server
// notices.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/roomcast/roomcast/config"
	"github.com/roomcast/roomcast/src/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var addr string
	var bridge bool
	var logLevel string

	flagSet := pflag.NewFlagSet("roomcast-server", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides ROOMCAST_ADDR)")
	flagSet.BoolVar(&bridge, "bridge", false, "enable the Redis cross-instance bridge")
	flagSet.StringVar(&logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if bridge {
		cfg.Bridge = true
	}

	srv := server.New(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := srv.Stop(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	return srv.Start()
}
