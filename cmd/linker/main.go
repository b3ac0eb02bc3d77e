package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epl-data/xreflink/internal/app"
	"github.com/epl-data/xreflink/internal/config"
	"github.com/epl-data/xreflink/internal/observability"
	"github.com/epl-data/xreflink/internal/platform/logging"
	"github.com/epl-data/xreflink/internal/usecase"
)

func main() {
	var (
		targetSource    = flag.String("source", "", "provider source whose players are being linked (understat, fbref, fpl)")
		candidateSource = flag.String("candidate", "fpl", "provider source to link against")
		workers         = flag.Int("workers", 0, "matching worker count, 0 uses LINK_WORKERS")
		teamsOnly       = flag.Bool("teams-only", false, "stop after the team xref is stored")
		dryRun          = flag.Bool("dry-run", false, "compute and report without writing to the database")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *targetSource == "" {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopPyroscope(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	req := usecase.LinkRequest{
		TargetSource:    *targetSource,
		CandidateSource: *candidateSource,
		Workers:         *workers,
		TeamsOnly:       *teamsOnly,
		DryRun:          *dryRun,
	}

	result, err := app.Run(ctx, cfg, req, logger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("link run canceled")
			os.Exit(130)
		}
		logger.Error("link run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("link run finished",
		"source", result.TargetSource,
		"matched", result.Summary.Matched,
		"unmatched", result.Summary.Unmatched,
	)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: linker -source <name> [-candidate <name>] [-workers N] [-teams-only] [-dry-run]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Links one provider's player and team catalogs to canonical identities.")
	fmt.Fprintln(os.Stderr, "Sources: understat, fbref, fpl. Configuration comes from the environment")
	fmt.Fprintln(os.Stderr, "(DB_URL, MATCH_*_THRESHOLD, LINK_WORKERS, ALIAS_FILE, REPORT_PATH, ...).")
	flag.PrintDefaults()
}
