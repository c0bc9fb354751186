package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vedika/amlgen/internal/config"
	"github.com/vedika/amlgen/internal/engine"
	kafkaevents "github.com/vedika/amlgen/internal/events/kafka"
	"github.com/vedika/amlgen/internal/ledger"
	"github.com/vedika/amlgen/internal/loader"
	"github.com/vedika/amlgen/internal/logging"
	"github.com/vedika/amlgen/internal/metrics"
)

func main() {
	var (
		propsPath   = flag.String("conf", "amlgen.json", "path to the simulation properties file")
		outputDir   = flag.String("output-dir", "", "override the configured output directory")
		seed        = flag.Int64("seed", 0, "override the configured random seed")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.Logging).With("component", "amlgen")

	props, err := config.LoadProperties(*propsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load properties: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		props.Output.Directory = *outputDir
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			props.General.RandomSeed = *seed
		}
	})

	inputs, err := loadInputs(props)
	if err != nil {
		logger.Error("failed to load inputs", "error", err)
		os.Exit(1)
	}

	var store ledger.Store = ledger.NewMemoryStore()
	if cfg.Postgres.DSN != "" {
		pg, err := ledger.OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			logger.Error("failed to open postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		logger.Info("using postgres ledger store")
	}

	collector := metrics.NewCollector()
	opts := []ledger.Option{
		ledger.WithObserver(func(tx ledger.Transaction) {
			collector.RecordTransaction(tx.Type, tx.Amount, tx.IsFraud)
		}),
	}
	if props.Simulator.TransactionLimit > 0 {
		opts = append(opts, ledger.WithLimit(props.Simulator.TransactionLimit))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := kafkaevents.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		opts = append(opts, ledger.WithObserver(func(tx ledger.Transaction) {
			if err := publisher.Publish(ctx, tx.Origin, tx); err != nil {
				logger.Warn("failed to publish transaction event", "error", err)
			}
		}))
		logger.Info("publishing transaction events", "topic", cfg.Kafka.Topic)
	}

	led := ledger.New(store, logger, opts...)

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			logger.Info("serving metrics", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	sim, err := engine.Build(props, inputs, led, logger, engine.WithStepObserver(collector.SetStep))
	if err != nil {
		logger.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	summary, err := sim.Run(ctx)
	if err != nil {
		logger.Error("simulation aborted", "error", err)
		os.Exit(1)
	}

	txs, err := led.Transactions()
	if err != nil {
		logger.Error("failed to read back transaction log", "error", err)
		os.Exit(1)
	}
	logPath, err := ledger.WriteLog(txs, props.Output.Directory, props.Output.TransactionLog)
	if err != nil {
		logger.Error("failed to write transaction log", "error", err)
		os.Exit(1)
	}

	total, fraud := led.Totals()
	logger.Info("run complete",
		"simulation", props.General.SimulationName,
		"steps", summary.Steps,
		"accounts", summary.Accounts,
		"branches", summary.Branches,
		"transactions", total,
		"fraud_transactions", fraud,
		"log", logPath,
		"duration", summary.Duration)
}

// loadInputs resolves the configured input files. Accounts and edges are
// required; alert members and the type table are optional.
func loadInputs(props config.Properties) (engine.Inputs, error) {
	dir := props.Input.Directory

	if props.Input.Accounts == "" {
		return engine.Inputs{}, fmt.Errorf("no accounts input configured")
	}
	accounts, err := loader.LoadAccounts(filepath.Join(dir, props.Input.Accounts))
	if err != nil {
		return engine.Inputs{}, err
	}

	if props.Input.Transactions == "" {
		return engine.Inputs{}, fmt.Errorf("no transactions (edge list) input configured")
	}
	edges, err := loader.LoadEdges(filepath.Join(dir, props.Input.Transactions))
	if err != nil {
		return engine.Inputs{}, err
	}

	in := engine.Inputs{Accounts: accounts, Edges: edges}
	if props.Input.AlertMembers != "" {
		in.Alerts, err = loader.LoadAlertMembers(filepath.Join(dir, props.Input.AlertMembers))
		if err != nil {
			return engine.Inputs{}, err
		}
	}
	if props.Input.TransactionTypes != "" {
		in.Types, err = loader.LoadTransactionTypes(filepath.Join(dir, props.Input.TransactionTypes))
		if err != nil {
			return engine.Inputs{}, err
		}
	}
	return in, nil
}
