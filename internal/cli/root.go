package cli

import (
	"log/slog"

	"github.com/alexanderramin/buildseq/internal/metrics"
	"github.com/alexanderramin/buildseq/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Sequences service.SequenceService
	Imports   service.ImportService
	Documents service.DocumentService

	// Metrics and Gatherer back the HTTP API's /metrics route. Both may be
	// nil.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Forms, confirms
	// and the schedule viewer need one.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "buildseq" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "buildseq",
		Short: "Sequence construction line items into a day-by-day schedule",
		Long: `buildseq turns estimate, invoice and work order line items into an ordered
construction schedule with a critical path, inspections and permits.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newSequenceCmd(app),
		newRulesCmd(app),
		newDocCmd(app),
		newServeCmd(app),
	)

	return root
}
