package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexanderramin/buildseq/internal/app"
	"github.com/alexanderramin/buildseq/internal/intelligence"
	"github.com/alexanderramin/buildseq/internal/llm"
	"github.com/alexanderramin/buildseq/internal/sequencer"
	"golang.org/x/time/rate"
)

// DefaultMaxDescriptionChars caps free-text input before it reaches the parser.
const DefaultMaxDescriptionChars = 4000

// SequenceConfig tunes the sequence use case.
type SequenceConfig struct {
	MaxDescriptionChars int
	// RateLimit is requests per second; zero or less disables throttling.
	RateLimit float64
	RateBurst int
}

func DefaultSequenceConfig() SequenceConfig {
	return SequenceConfig{MaxDescriptionChars: DefaultMaxDescriptionChars}
}

type sequenceService struct {
	seq      *sequencer.Sequencer
	parser   intelligence.ProjectParser
	limiter  *rate.Limiter
	maxChars int
	observer UseCaseObserver
}

// NewSequenceService wires the sequencer to an optional free-text parser.
// A nil parser makes every free-text request fail with
// CLASSIFICATION_FAILED.
func NewSequenceService(
	seq *sequencer.Sequencer,
	parser intelligence.ProjectParser,
	cfg SequenceConfig,
	observers ...UseCaseObserver,
) SequenceService {
	if seq == nil {
		seq = sequencer.New(nil)
	}
	maxChars := cfg.MaxDescriptionChars
	if maxChars <= 0 {
		maxChars = DefaultMaxDescriptionChars
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &sequenceService{
		seq:      seq,
		parser:   parser,
		limiter:  limiter,
		maxChars: maxChars,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *sequenceService) Rules() *sequencer.RuleTable {
	return s.seq.Rules()
}

func (s *sequenceService) Sequence(ctx context.Context, req app.SequenceRequest) (resp *app.SequenceResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"items": len(req.Items),
		"mode":  string(req.Mode()),
	}
	defer func() {
		if resp != nil {
			fields["source"] = resp.Source
			fields["tasks"] = len(resp.Tasks)
			fields["total_days"] = resp.TotalDurationDays
		}
		observe(ctx, s.observer, "sequence", startedAt, fields, err)
	}()

	if s.limiter != nil && !s.limiter.Allow() {
		return nil, sequenceErr(app.SequenceErrRateLimited, nil, "too many sequencing requests; retry shortly")
	}

	mode := req.Mode()
	if err := validateMode(mode); err != nil {
		return nil, err
	}
	meta, err := metaFromRequest(req.ProjectMeta)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.FreeTextDescription)
	if len(req.Items) == 0 && text == "" {
		return nil, sequenceErr(app.SequenceErrEmptyInput, nil, "provide at least one item or a free_text_description")
	}

	var (
		items    []sequencer.Item
		source   = "items"
		warnings []string
	)
	if len(req.Items) > 0 {
		if items, err = toSequencerItems(req.Items); err != nil {
			return nil, err
		}
		if text != "" {
			warnings = append(warnings, "free_text_description ignored because items were provided")
		}
	} else {
		source = "free_text"
		if items, err = s.parseDescription(ctx, text, req.ProjectMeta); err != nil {
			return nil, err
		}
		fields["parsed_items"] = len(items)
	}

	result, err := runSequencer(s.seq, items, sequencer.Options{
		Meta:               meta,
		IncludePermits:     req.PermitsIncluded(),
		IncludeInspections: req.InspectionsIncluded(),
		Mode:               mode,
	})
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		result.Warnings = append(warnings, result.Warnings...)
	}

	return &app.SequenceResponse{
		GeneratedAt:      startedAt,
		Source:           source,
		SequencingResult: *result,
	}, nil
}

func (s *sequenceService) parseDescription(ctx context.Context, text string, meta *app.ProjectMeta) ([]sequencer.Item, error) {
	if n := utf8.RuneCountInString(text); n > s.maxChars {
		return nil, sequenceErr(app.SequenceErrDescriptionTooLong, nil,
			"free_text_description is %d characters; the limit is %d", n, s.maxChars)
	}
	if s.parser == nil {
		return nil, sequenceErr(app.SequenceErrClassificationFailed, llm.ErrDisabled,
			"free-text parsing is not configured; submit items instead")
	}

	parsed, err := s.parser.Parse(ctx, text, meta)
	if err != nil {
		return nil, sequenceErr(app.SequenceErrClassificationFailed, err,
			"could not turn the description into tasks (%s)", llm.ErrorCode(err))
	}
	// Parser output is re-checked against the same rules as caller items.
	items, err := toSequencerItems(parsed)
	if err != nil {
		var seqErr *app.SequenceError
		if errors.As(err, &seqErr) {
			return nil, sequenceErr(app.SequenceErrClassificationFailed, err, "parser returned unusable tasks: %s", seqErr.Message)
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, sequenceErr(app.SequenceErrClassificationFailed, llm.ErrInvalidOutput, "parser returned no tasks")
	}
	return items, nil
}
