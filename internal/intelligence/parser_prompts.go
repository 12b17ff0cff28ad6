package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/buildseq/internal/contract"
	"github.com/alexanderramin/buildseq/internal/domain"
)

const parserSystemPromptHead = `You break construction and renovation project descriptions into individual work tasks for a contractor's schedule.

Output ONLY a JSON object of this shape, with no prose and no comments:
{
  "tasks": [
    {
      "name": "short imperative task name",
      "description": "one sentence of scope detail",
      "phase": "one of the phase values listed below",
      "duration_days": 2,
      "depends_on": ["exact name of another task in this list"]
    }
  ]
}

Rules:
- One task per distinct trade activity. Split "demo and reframe the wall" into two tasks.
- Use only these phase values: %s.
- Omit "phase" when unsure; omit "duration_days" when the description gives no hint.
- "depends_on" may only name other tasks from your own list, spelled exactly the same.
- Never invent work the description does not imply. Do not add permits or inspections unless mentioned.
- At most %d tasks.`

func parserSystemPrompt() string {
	phases := make([]string, len(domain.AllPhases))
	for i, p := range domain.AllPhases {
		phases[i] = string(p)
	}
	return fmt.Sprintf(parserSystemPromptHead, strings.Join(phases, ", "), MaxParsedTasks)
}

func buildParserUserPrompt(description string, meta *contract.ProjectMeta) string {
	var b strings.Builder
	if meta != nil {
		if meta.ProjectType != "" {
			fmt.Fprintf(&b, "Project type: %s\n", meta.ProjectType)
		}
		if meta.SquareFootage > 0 {
			fmt.Fprintf(&b, "Floor area: %.0f sq ft\n", meta.SquareFootage)
		}
		if meta.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", meta.Location)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("Project description:\n")
	b.WriteString(strings.TrimSpace(description))
	return b.String()
}
