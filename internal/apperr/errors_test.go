package apperr

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"invalid range", &InvalidRangeError{Reason: "start after end"}, CodeInvalidRange},
		{"wrapped integrity", fmt.Errorf("load: %w", &DataIntegrityError{RecordID: "r1", Field: "fx_rate", Reason: "must be positive"}), CodeDataIntegrity},
		{"insufficient", &InsufficientDataError{Stage: "forecast", Reason: "no history"}, CodeInsufficientData},
		{"foreign error", fmt.Errorf("boom"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	start := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	err := &InvalidRangeError{Start: start, End: end, Reason: "start is after end"}
	assert.Equal(t, "[INVALID_RANGE] period 2025-03-31..2025-03-01: start is after end", err.Error())

	err = &InvalidRangeError{Selector: "fortnight", Reason: "unknown period selector"}
	assert.Equal(t, `[INVALID_RANGE] period "fortnight": unknown period selector`, err.Error())

	integrity := &DataIntegrityError{RecordID: "inv-1", Field: "fx_rate", Reason: "must be greater than zero"}
	assert.Equal(t, "[DATA_INTEGRITY] record inv-1: fx_rate must be greater than zero", integrity.Error())
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", &InvalidRangeError{Reason: "x"})
	assert.True(t, IsInvalidRange(wrapped))
	assert.False(t, IsDataIntegrity(wrapped))
	assert.True(t, IsInsufficientData(&InsufficientDataError{Stage: "kpi"}))
}
