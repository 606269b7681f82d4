// Package main is a diagnostic tool: it builds the configured store stack,
// refreshes the connections and reports the reuse statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/botmint/chatstore"
	"github.com/botmint/chatstore/config"
)

func main() {
	configPath := flag.String("config", "chatstore.yaml", "path to the configuration file")
	flag.Parse()

	logger := chatstore.NewDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.LogLevel())

	store, err := cfg.BuildStore(logger)
	if err != nil {
		logger.Error("failed to build store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.SetKeepalive(ctx); err != nil {
		logger.Error("keepalive failed", "err", err)
		os.Exit(1)
	}

	stats, err := store.ReusedTimes(ctx)
	if err != nil {
		logger.Error("failed to read reuse statistics", "err", err)
		os.Exit(1)
	}
	fmt.Println(stats)
}
