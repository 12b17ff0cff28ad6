package llm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTask struct {
	Name         string   `json:"name"`
	Phase        string   `json:"phase"`
	DurationDays *float64 `json:"duration_days"`
}

type testPayload struct {
	Tasks []testTask `json:"tasks"`
}

func TestExtractJSON_CleanJSON(t *testing.T) {
	out, err := ExtractJSON[testPayload](`{"tasks":[{"name":"Frame walls","phase":"framing"}]}`, nil)
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "Frame walls", out.Tasks[0].Name)
}

func TestExtractJSON_FencedWithProse(t *testing.T) {
	raw := "Here is the breakdown:\n```json\n{\"tasks\":[{\"name\":\"Pour slab\"}]}\n```\nLet me know!"
	out, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pour slab", out.Tasks[0].Name)
}

func TestExtractJSON_BracesAndQuotesInStrings(t *testing.T) {
	raw := `{"tasks":[{"name":"Install {custom} \"barn\" door // sliding"}]}`
	out, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, `Install {custom} "barn" door // sliding`, out.Tasks[0].Name)
}

func TestExtractJSON_CommentsStripped(t *testing.T) {
	raw := `{
		// framing first
		"tasks": [{"name": "Frame walls" /* exterior */}]
	}`
	out, err := ExtractJSON[testPayload](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Frame walls", out.Tasks[0].Name)
}

func TestExtractJSON_LeadingDecimal(t *testing.T) {
	out, err := ExtractJSON[testPayload](`{"tasks":[{"name":"Caulk","duration_days": .5}]}`, nil)
	require.NoError(t, err)
	require.NotNil(t, out.Tasks[0].DurationDays)
	assert.Equal(t, 0.5, *out.Tasks[0].DurationDays)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload]("I could not understand the project.", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_Unbalanced(t *testing.T) {
	_, err := ExtractJSON[testPayload](`{"tasks":[{"name":"Frame walls"}]`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	_, err := ExtractJSON[testPayload](`{"tasks": broken}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_ValidatorRejects(t *testing.T) {
	notEmpty := func(p testPayload) error {
		if len(p.Tasks) == 0 {
			return fmt.Errorf("no tasks")
		}
		return nil
	}
	_, err := ExtractJSON(`{"tasks":[]}`, notEmpty)
	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Contains(t, err.Error(), "validation failed")

	out, err := ExtractJSON(`{"tasks":[{"name":"Paint"}]}`, notEmpty)
	require.NoError(t, err)
	assert.Len(t, out.Tasks, 1)
}
