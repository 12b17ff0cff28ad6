package contract

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/alexanderramin/buildseq/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- SequenceRequest defaults ---

func TestNewSequenceRequest_SetsDefaults(t *testing.T) {
	req := NewSequenceRequest([]SequenceItem{{Name: "Frame walls"}})

	assert.Len(t, req.Items, 1)
	assert.True(t, req.PermitsIncluded())
	assert.True(t, req.InspectionsIncluded())
	assert.Equal(t, domain.CriticalPathHeuristic, req.Mode())
	assert.Empty(t, req.FreeTextDescription)
	assert.Nil(t, req.ProjectMeta)
}

func TestSequenceRequest_ZeroValueIncludesEvents(t *testing.T) {
	var req SequenceRequest
	assert.True(t, req.PermitsIncluded())
	assert.True(t, req.InspectionsIncluded())
	assert.Equal(t, domain.CriticalPathHeuristic, req.Mode())
}

func TestSequenceRequest_DecodesSnakeCase(t *testing.T) {
	body := `{
		"items": [{"name": "Frame walls", "phase": "framing", "duration_days": 4, "depends_on": ["Pour footing"]}],
		"project_meta": {"square_footage": 1800},
		"include_permits": false,
		"critical_path_mode": "cpm"
	}`
	var req SequenceRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Items, 1)
	assert.Equal(t, "framing", req.Items[0].Phase)
	require.NotNil(t, req.Items[0].DurationDays)
	assert.Equal(t, 4.0, *req.Items[0].DurationDays)
	assert.Equal(t, []string{"Pour footing"}, req.Items[0].DependsOn)
	assert.Equal(t, 1800.0, req.ProjectMeta.SquareFootage)
	assert.False(t, req.PermitsIncluded())
	assert.True(t, req.InspectionsIncluded())
	assert.Equal(t, domain.CriticalPathCPM, req.Mode())
}

// --- SequenceError ---

func TestSequenceError_Format(t *testing.T) {
	err := &SequenceError{Code: ErrEmptyInput, Message: "no items"}
	assert.Equal(t, "EMPTY_INPUT: no items", err.Error())
}

func TestSequenceError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &SequenceError{Code: ErrClassificationFailed, Message: "parser unavailable", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable())
}

func TestSequenceErrorCode_RetryableAndStatus(t *testing.T) {
	cases := []struct {
		code      SequenceErrorCode
		retryable bool
		status    int
	}{
		{ErrEmptyInput, false, http.StatusBadRequest},
		{ErrInvalidInput, false, http.StatusBadRequest},
		{ErrDescriptionTooLong, false, http.StatusRequestEntityTooLarge},
		{ErrClassificationFailed, true, http.StatusBadGateway},
		{ErrRateLimited, true, http.StatusTooManyRequests},
		{ErrCycleDetected, false, http.StatusUnprocessableEntity},
		{ErrInternalError, false, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.retryable, tc.code.Retryable(), string(tc.code))
		assert.Equal(t, tc.status, tc.code.HTTPStatus(), string(tc.code))
	}
}

func TestDocumentError_Format(t *testing.T) {
	err := &DocumentError{Code: DocumentErrInvalidTransition, Message: "work orders are final"}
	assert.Equal(t, "INVALID_TRANSITION: work orders are final", err.Error())
}
