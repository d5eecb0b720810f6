package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/tx-engine/internal/config"
	"github.com/example/tx-engine/internal/engine"
	"github.com/example/tx-engine/internal/ingest"
	"github.com/example/tx-engine/internal/report"
	"github.com/example/tx-engine/pkg/audit"
)

func main() {
	strict := flag.Bool("strict", false, "abort on the first business-rule violation instead of skipping it")
	missingAmount := flag.String("missing-amount", "", "policy for funding events without an amount (zero|reject)")
	lockedAccounts := flag.String("locked-accounts", "", "policy for events against locked accounts (allow|reject)")
	output := flag.String("output", "", "write the report to this file instead of stdout")
	envFile := flag.String("env-file", "", "load environment variables from this file before reading configuration")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: txengine [flags] <transactions.csv>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("failed to load env file: %v", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Flags override the environment, but only when set explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "strict":
			cfg.Strict = *strict
		case "missing-amount":
			cfg.MissingAmount = engine.MissingAmountPolicy(*missingAmount)
		case "locked-accounts":
			cfg.LockedAccounts = engine.LockedAccountPolicy(*lockedAccounts)
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	reader, err := ingest.Open(flag.Arg(0))
	if err != nil {
		logger.Fatal("failed to open transactions", zap.Error(err))
	}
	defer reader.Close()

	chain := audit.NewChain()
	book, err := engine.Build(reader, engine.Options{
		Strict:   cfg.Strict,
		Policies: cfg.Policies(),
		Logger:   logger,
		Audit:    chain,
	})
	if err != nil {
		logger.Fatal("failed to process transactions", zap.Error(err))
	}

	sink := os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			logger.Fatal("failed to create output file", zap.Error(err))
		}
		defer file.Close()
		sink = file
	}

	accounts := book.Accounts()
	if err := report.Write(sink, accounts); err != nil {
		logger.Fatal("failed to write report", zap.Error(err))
	}

	logger.Info("run complete",
		zap.String("run_id", chain.RunID()),
		zap.Int("accounts", len(accounts)),
		zap.Int("rejected", chain.Len()),
	)
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
