package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/buildseq/internal/cli/formatter"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// errNotInteractive is returned by commands that need a terminal when
// stdin is not one.
var errNotInteractive = errors.New("this command needs an interactive terminal")

func newDocCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doc",
		Aliases: []string{"docs", "document"},
		Short:   "Manage estimates, invoices and work orders",
	}

	cmd.AddCommand(
		newDocImportCmd(a),
		newDocNewCmd(a),
		newDocListCmd(a),
		newDocShowCmd(a),
		newDocScheduleCmd(a),
		newDocConvertCmd(a),
		newDocViewCmd(a),
		newDocRemoveCmd(a),
		newDocExportCmd(a),
	)

	return cmd
}

func newDocImportCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a document from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Imports.ImportDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s %s (%d line items)\n",
				res.Document.DisplayID(), res.Document.Title, res.LineItemCount)
			return nil
		},
	}
}

func newDocNewCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a document with an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return fmt.Errorf("%w; use `buildseq doc import <file>` instead", errNotInteractive)
			}

			var values documentFormValues
			if err := documentForm(&values).Run(); err != nil {
				return err
			}
			file, err := values.toFile()
			if err != nil {
				return err
			}

			res, err := a.Imports.ImportDocumentFromSchema(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%d line items)\n",
				res.Document.DisplayID(), res.Document.Title, res.LineItemCount)
			return nil
		},
	}
}

func newDocListCmd(a *App) *cobra.Command {
	var kind kindFlag

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.Documents.List(cmd.Context(), kind.kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDocumentList(docs))
			return nil
		},
	}

	cmd.Flags().Var(&kind, "kind", "Only list estimate, invoice or work_order documents")
	return cmd
}

// kindFlag parses --kind at flag time so a typo fails before any query.
type kindFlag struct {
	kind *domain.DocumentKind
}

var _ pflag.Value = (*kindFlag)(nil)

func (f *kindFlag) String() string {
	if f.kind == nil {
		return ""
	}
	return string(*f.kind)
}

func (f *kindFlag) Set(s string) error {
	k, err := parseKind(s)
	if err != nil {
		return err
	}
	f.kind = &k
	return nil
}

func (f *kindFlag) Type() string { return "kind" }

func newDocShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document, its line items and latest schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.Documents.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDocument(view.Document, view.LineItems, view.Schedule))
			return nil
		},
	}
}

func newDocScheduleCmd(a *App) *cobra.Command {
	var cpm, asJSON, gantt bool

	cmd := &cobra.Command{
		Use:   "schedule <id>",
		Short: "Sequence a document's line items and save the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := domain.CriticalPathHeuristic
			if cpm {
				mode = domain.CriticalPathCPM
			}

			sched, err := a.Documents.Schedule(cmd.Context(), args[0], mode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sched.Result)
			}
			fmt.Fprintln(out, formatter.FormatSequencingResult(strings.ToUpper(args[0]), &sched.Result))
			if gantt {
				fmt.Fprintln(out, formatter.FormatGantt(&sched.Result, 48))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cpm, "cpm", false, "Use the backward-pass critical path and report slack")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the schedule as JSON")
	cmd.Flags().BoolVar(&gantt, "gantt", false, "Also draw a Gantt chart")
	return cmd
}

func newDocConvertCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <id>",
		Short: "Convert an estimate to an invoice, or an invoice to a scheduled work order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Documents.Convert(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %s → %s %s\n",
				res.Source.DisplayID(), res.Document.DisplayID(), formatter.KindBadge(res.Document.Kind))
			if res.Schedule != nil {
				fmt.Fprintf(out, "Scheduled %d tasks over %s\n",
					len(res.Schedule.Result.Tasks), formatter.FormatDays(res.Schedule.Result.TotalDurationDays))
			}
			return nil
		},
	}
}

func newDocViewCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view <id>",
		Short: "Browse a document's saved schedule interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return fmt.Errorf("%w; use `buildseq doc show %s` instead", errNotInteractive, args[0])
			}

			view, err := a.Documents.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if view.Schedule == nil {
				return fmt.Errorf("%s has no schedule yet; run `buildseq doc schedule %s`",
					view.Document.DisplayID(), view.Document.DisplayID())
			}

			title := view.Document.DisplayID() + " " + view.Document.Title
			return runScheduleViewer(title, &view.Schedule.Result)
		},
	}
}

func newDocRemoveCmd(a *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a document with its line items and schedules",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.Documents.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc := view.Document

			if !force {
				if !a.interactive() {
					return fmt.Errorf("refusing to delete %s without --force", doc.DisplayID())
				}
				confirmed := false
				prompt := fmt.Sprintf("Delete %s %q and its schedules?", doc.DisplayID(), doc.Title)
				if err := confirmForm(prompt, &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := a.Documents.Delete(cmd.Context(), doc.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", doc.DisplayID())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}

func newDocExportCmd(a *App) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a document in import file form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" {
				format = string(importer.FormatForPath(output))
			}
			file, err := a.Documents.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := encodeDocumentFile(w, file, importer.Format(format)); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "yaml or json (default yaml, or from the -o extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func encodeDocumentFile(w io.Writer, file *importer.DocumentFile, format importer.Format) error {
	switch format {
	case importer.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	case importer.FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (use yaml or json)", format)
	}
}

func parseKind(s string) (domain.DocumentKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if norm == "workorder" {
		norm = string(domain.KindWorkOrder)
	}
	if !domain.ValidDocumentKinds[norm] {
		return "", fmt.Errorf("unknown document kind %q (use estimate, invoice or work_order)", s)
	}
	return domain.DocumentKind(norm), nil
}
