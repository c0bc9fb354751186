package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vedika/amlgen/internal/config"
	"github.com/vedika/amlgen/internal/graph"
	"github.com/vedika/amlgen/internal/ledger"
	"github.com/vedika/amlgen/internal/logging"
)

func main() {
	var (
		logPath = flag.String("txlog", "output/tx_log.csv", "path to the transaction log CSV")
		workers = flag.Int("workers", 4, "number of concurrent export workers")
		timeout = flag.Duration("timeout", 10*time.Minute, "overall export timeout")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.Logging).With("component", "ingest")

	txs, err := ledger.ReadLog(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read transaction log: %v\n", err)
		os.Exit(1)
	}
	if len(txs) == 0 {
		logger.Error("transaction log empty", "path", *logPath)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		logger.Error("failed to connect to graph database", "error", err)
		os.Exit(1)
	}
	defer client.Close(context.Background())

	exporter := graph.NewExporter(client, *workers)
	startedAt := time.Now()
	if err := exporter.Export(ctx, txs); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("export complete",
		"transactions", len(txs),
		"path", *logPath,
		"duration", time.Since(startedAt))
}
