package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/cli/formatter"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/importer"
	"github.com/spf13/cobra"
)

type sequenceFlags struct {
	text          string
	sqft          float64
	projectType   string
	noPermits     bool
	noInspections bool
	cpm           bool
	asJSON        bool
	gantt         bool
}

func newSequenceCmd(a *App) *cobra.Command {
	var f sequenceFlags

	cmd := &cobra.Command{
		Use:   "sequence [file]",
		Short: "Sequence line items from a file, stdin (-) or a free-text description",
		Example: `  buildseq sequence kitchen.yaml
  buildseq sequence kitchen.json --cpm --json
  buildseq sequence --text "Gut and remodel a 200 sq ft bathroom" --sqft 200`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.SequenceRequest{FreeTextDescription: strings.TrimSpace(f.text)}
			title := "Schedule"

			if len(args) == 1 {
				file, err := readSequenceFile(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				req = requestFromFile(file)
				req.FreeTextDescription = strings.TrimSpace(f.text)
				title = domain.CoalesceStr(file.Document.Title, title)
			}
			f.apply(cmd, &req)

			var stop func()
			if len(req.Items) == 0 && req.FreeTextDescription != "" && a.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Reading the scope of work...")
			}
			resp, err := a.Sequences.Sequence(cmd.Context(), req)
			if stop != nil {
				stop()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.asJSON {
				return writeJSON(out, resp)
			}
			fmt.Fprintln(out, formatter.FormatSequencingResult(title, &resp.SequencingResult))
			if f.gantt {
				fmt.Fprintln(out, formatter.FormatGantt(&resp.SequencingResult, 48))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.text, "text", "", "Free-text scope of work, classified by the local LLM")
	cmd.Flags().Float64Var(&f.sqft, "sqft", 0, "Project square footage (scales area-based durations)")
	cmd.Flags().StringVar(&f.projectType, "type", "", "Project type, e.g. remodel or new build")
	cmd.Flags().BoolVar(&f.noPermits, "no-permits", false, "Omit the permit list")
	cmd.Flags().BoolVar(&f.noInspections, "no-inspections", false, "Omit inspection events")
	cmd.Flags().BoolVar(&f.cpm, "cpm", false, "Use the backward-pass critical path and report slack")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&f.gantt, "gantt", false, "Also draw a Gantt chart")

	return cmd
}

// apply overlays explicitly set flags on req; a flag left at its default
// keeps whatever the file said.
func (f sequenceFlags) apply(cmd *cobra.Command, req *app.SequenceRequest) {
	if cmd.Flags().Changed("sqft") || cmd.Flags().Changed("type") {
		if req.ProjectMeta == nil {
			req.ProjectMeta = &app.ProjectMeta{}
		}
		if cmd.Flags().Changed("sqft") {
			req.ProjectMeta.SquareFootage = f.sqft
		}
		if cmd.Flags().Changed("type") {
			req.ProjectMeta.ProjectType = f.projectType
		}
	}

	permits := !f.noPermits
	inspections := !f.noInspections
	req.IncludePermits = &permits
	req.IncludeInspections = &inspections

	req.CriticalPathMode = string(domain.CriticalPathHeuristic)
	if f.cpm {
		req.CriticalPathMode = string(domain.CriticalPathCPM)
	}
}

// readSequenceFile loads a document file. "-" reads stdin, which is
// decoded as YAML so JSON input works too.
func readSequenceFile(stdin io.Reader, path string) (*importer.DocumentFile, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return importer.ParseDocumentFile(data, importer.FormatYAML)
	}
	f, err := importer.LoadDocumentFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

// requestFromFile maps a document file onto a sequencing request. Item
// validation is left to the sequence use case.
func requestFromFile(f *importer.DocumentFile) app.SequenceRequest {
	items := make([]app.SequenceItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, app.SequenceItem{
			Name:         it.Name,
			Description:  it.Description,
			Quantity:     domain.FloatFromPtrWithDefault(1, it.Quantity),
			Unit:         it.Unit,
			Phase:        it.Phase,
			DurationDays: it.DurationDays,
			DependsOn:    it.DependsOn,
		})
	}

	req := app.SequenceRequest{Items: items}
	d := f.Document
	if d.SquareFootage != nil || d.ProjectType != "" || d.Location != "" {
		req.ProjectMeta = &app.ProjectMeta{
			SquareFootage: domain.FloatFromPtrWithDefault(0, d.SquareFootage),
			ProjectType:   d.ProjectType,
			Location:      d.Location,
		}
	}
	return req
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
