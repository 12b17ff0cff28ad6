package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/contract"
	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/alexanderramin/buildseq/internal/llm"
)

// MaxParsedTasks caps how many tasks one description may expand into.
const MaxParsedTasks = 200

// ProjectParser turns a free-text project description into line items.
// Its output is untrusted: implementations must validate it before
// returning, and every failure is a classification failure to callers.
type ProjectParser interface {
	Parse(ctx context.Context, description string, meta *contract.ProjectMeta) ([]contract.SequenceItem, error)
}

type parsedTask struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Phase        string   `json:"phase"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	DurationDays *float64 `json:"duration_days"`
	DependsOn    []string `json:"depends_on"`
}

type parseResponse struct {
	Tasks []parsedTask `json:"tasks"`
}

type ollamaProjectParser struct {
	client llm.Client
}

// NewProjectParser returns a ProjectParser backed by an LLM client.
func NewProjectParser(client llm.Client) ProjectParser {
	return &ollamaProjectParser{client: client}
}

func (p *ollamaProjectParser) Parse(ctx context.Context, description string, meta *contract.ProjectMeta) ([]contract.SequenceItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: empty description", llm.ErrInvalidOutput)
	}

	resp, err := p.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskParse,
		SystemPrompt: parserSystemPrompt(),
		UserPrompt:   buildParserUserPrompt(description, meta),
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("llm parse failed: %w", err)
	}

	parsed, err := llm.ExtractJSON(resp.Text, validateParseResponse)
	if err != nil {
		return nil, fmt.Errorf("extracting parsed tasks: %w", err)
	}
	return toSequenceItems(parsed.Tasks), nil
}

// validateParseResponse rejects model output the sequencer must not see.
// All problems are reported together.
func validateParseResponse(r parseResponse) error {
	if len(r.Tasks) == 0 {
		return errors.New("no tasks returned")
	}
	if len(r.Tasks) > MaxParsedTasks {
		return fmt.Errorf("%d tasks returned, at most %d allowed", len(r.Tasks), MaxParsedTasks)
	}

	var errs []error
	for i, t := range r.Tasks {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("task %d: name is required", i))
		}
		if t.Phase != "" {
			if _, err := domain.ParsePhase(t.Phase); err != nil {
				errs = append(errs, fmt.Errorf("task %d: %w", i, err))
			}
		}
		if t.DurationDays != nil && *t.DurationDays < 0 {
			errs = append(errs, fmt.Errorf("task %d: duration_days must not be negative", i))
		}
		if t.Quantity < 0 {
			errs = append(errs, fmt.Errorf("task %d: quantity must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

func toSequenceItems(tasks []parsedTask) []contract.SequenceItem {
	items := make([]contract.SequenceItem, 0, len(tasks))
	for _, t := range tasks {
		item := contract.SequenceItem{
			Name:         strings.TrimSpace(t.Name),
			Description:  strings.TrimSpace(t.Description),
			Quantity:     t.Quantity,
			Unit:         t.Unit,
			DurationDays: t.DurationDays,
		}
		if t.Phase != "" {
			phase, _ := domain.ParsePhase(t.Phase)
			item.Phase = string(phase)
		}
		for _, dep := range t.DependsOn {
			if dep = strings.TrimSpace(dep); dep != "" {
				item.DependsOn = append(item.DependsOn, dep)
			}
		}
		items = append(items, item)
	}
	return items
}
