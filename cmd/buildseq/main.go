package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/buildseq/internal/cli"
	"github.com/alexanderramin/buildseq/internal/db"
	"github.com/alexanderramin/buildseq/internal/intelligence"
	"github.com/alexanderramin/buildseq/internal/llm"
	"github.com/alexanderramin/buildseq/internal/metrics"
	"github.com/alexanderramin/buildseq/internal/repository"
	"github.com/alexanderramin/buildseq/internal/sequencer"
	"github.com/alexanderramin/buildseq/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.buildseq/buildseq.db
	dbPath := os.Getenv("BUILDSEQ_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".buildseq", "buildseq.db")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	registry, m := metrics.NewRegistry()
	observers := []service.UseCaseObserver{m}
	if envBool("BUILDSEQ_LOG_USE_CASES") {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	// Free-text parsing is only wired when the local LLM is enabled.
	var parser intelligence.ProjectParser
	llmCfg := llm.LoadConfig()
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("llm config: %w", err)
	}
	if llmCfg.Enabled {
		var observer llm.Observer = m
		if llmCfg.LogCalls {
			observer = llm.MultiObserver{m, llm.NewLogObserver(logger)}
		}
		parser = intelligence.NewProjectParser(llm.NewOllamaClient(llmCfg, observer))
	}

	seqCfg := service.DefaultSequenceConfig()
	if n, ok := envInt("BUILDSEQ_MAX_DESCRIPTION_CHARS"); ok && n > 0 {
		seqCfg.MaxDescriptionChars = n
	}
	if v := strings.TrimSpace(os.Getenv("BUILDSEQ_RATE_LIMIT_RPS")); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BUILDSEQ_RATE_LIMIT_RPS: %w", err)
		}
		seqCfg.RateLimit = rps
	}
	if n, ok := envInt("BUILDSEQ_RATE_LIMIT_BURST"); ok {
		seqCfg.RateBurst = n
	}

	// Wire repositories
	documentRepo := repository.NewSQLiteDocumentRepo(database)
	lineItemRepo := repository.NewSQLiteLineItemRepo(database)
	scheduleRepo := repository.NewSQLiteScheduleRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	seq := sequencer.New(nil)

	app := &cli.App{
		Sequences: service.NewSequenceService(seq, parser, seqCfg, observers...),
		Imports:   service.NewImportService(uow, observers...),
		Documents: service.NewDocumentService(documentRepo, lineItemRepo, scheduleRepo, uow, seq, observers...),
		Metrics:   m,
		Gatherer:  registry,
		Logger:    logger,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func logLevel() slog.Level {
	if envBool("BUILDSEQ_DEBUG") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func envBool(name string) bool {
	b, _ := strconv.ParseBool(os.Getenv(name))
	return b
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
