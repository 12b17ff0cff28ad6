package sequencer

import (
	"math"
	"strings"

	"github.com/alexanderramin/buildseq/internal/domain"
)

// MinDurationDays is the duration floor: two working hours of an
// eight-hour day. It keeps every task strictly positive in width.
const MinDurationDays = 0.25

// areaUnitSqFt is the floor area one base duration covers for rules that
// scale with area.
const areaUnitSqFt = 1000.0

// Item is one raw line item or parsed task entering the pipeline.
type Item struct {
	Name        string
	Description string
	Quantity    float64
	// Phase, when set, skips keyword scoring.
	Phase *domain.Phase
	// DurationDays, when positive, overrides the rule-based duration.
	DurationDays *float64
	DependsOn    []string
}

// ProjectMeta carries optional project-level inputs that affect duration.
type ProjectMeta struct {
	SquareFootage float64
	ProjectType   string
	Location      string
}

// Classification is the classifier's verdict for one item.
type Classification struct {
	Phase domain.Phase
	Trade string
	// MatchedRule is nil when no rule scored above zero.
	MatchedRule *PhaseRule
	// Score is the number of distinct rule keywords found in the text.
	Score int
	// PredecessorPhases are the phases whose tasks this item waits on.
	PredecessorPhases  []domain.Phase
	DurationMultiplier float64
}

// ClassifiedItem pairs an input item with its classification and
// resolved duration.
type ClassifiedItem struct {
	Item           Item
	Classification Classification
	DurationDays   float64
}

// Classify maps an item to a construction phase. It is pure: the rule
// table is read-only and nothing else is consulted.
//
// Every rule with keywords is scored by the number of its keywords that
// occur as substrings of the lowercased name and description. The strictly
// highest score wins; ties go to the rule registered first. With no hits
// the item falls back to finishing work that waits on flooring.
func (t *RuleTable) Classify(item Item) Classification {
	if item.Phase != nil && item.Phase.Valid() {
		rule, explicit := t.RulesFor(*item.Phase)
		c := Classification{
			Phase:              *item.Phase,
			Trade:              rule.Trade,
			PredecessorPhases:  t.PredecessorsOf(*item.Phase),
			DurationMultiplier: 1.0,
		}
		if explicit {
			c.MatchedRule = &rule
		}
		return c
	}

	text := strings.ToLower(item.Name + " " + item.Description)

	bestIdx, bestScore := -1, 0
	for i := range t.ordered {
		score := keywordScore(text, t.ordered[i].Keywords)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestIdx < 0 {
		def := t.Default()
		return Classification{
			Phase:              def.Phase,
			Trade:              def.Trade,
			PredecessorPhases:  []domain.Phase{defaultPredecessor},
			DurationMultiplier: 1.0,
		}
	}

	rule := cloneRule(t.ordered[bestIdx])
	return Classification{
		Phase:              rule.Phase,
		Trade:              rule.Trade,
		MatchedRule:        &rule,
		Score:              bestScore,
		PredecessorPhases:  t.PredecessorsOf(rule.Phase),
		DurationMultiplier: 1.0,
	}
}

// ClassifyAll classifies a batch and resolves each item's duration.
func (t *RuleTable) ClassifyAll(items []Item, meta ProjectMeta) []ClassifiedItem {
	out := make([]ClassifiedItem, len(items))
	for i, item := range items {
		c := t.Classify(item)
		base := 0.0
		if c.MatchedRule != nil {
			base = c.MatchedRule.BaseDurationDays
			if c.MatchedRule.ScalesWithArea && meta.SquareFootage > 0 {
				c.DurationMultiplier = math.Max(1.0, meta.SquareFootage/areaUnitSqFt)
			}
		}
		out[i] = ClassifiedItem{
			Item:           item,
			Classification: c,
			DurationDays:   resolveDuration(item.DurationDays, base, c.DurationMultiplier),
		}
	}
	return out
}

func resolveDuration(hint *float64, base, multiplier float64) float64 {
	d := base * multiplier
	if hint != nil && *hint > 0 {
		d = *hint
	}
	if d < MinDurationDays || math.IsNaN(d) {
		return MinDurationDays
	}
	return d
}

func keywordScore(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
