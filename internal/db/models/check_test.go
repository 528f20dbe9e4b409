package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckRun_Tally(t *testing.T) {
	run := CheckRun{
		Host: "piwebapi.lab",
		Results: []CheckResult{
			{Name: "settings", Outcome: OutcomePassed},
			{Name: "home", Outcome: OutcomePassed},
			{Name: "vision", Outcome: OutcomeSkipped},
			{Name: "af-server", Outcome: OutcomeFailed},
		},
	}
	run.Tally()
	assert.Equal(t, 2, run.Passed)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, run.Skipped)
	assert.False(t, run.Succeeded())
}

func TestCheckRun_Validate(t *testing.T) {
	tests := []struct {
		name    string
		run     CheckRun
		wantErr string
	}{
		{
			name: "valid",
			run:  CheckRun{Host: "h", Results: []CheckResult{{Name: "home", Outcome: OutcomePassed}}},
		},
		{
			name:    "missing host",
			run:     CheckRun{},
			wantErr: "host is required",
		},
		{
			name:    "unnamed result",
			run:     CheckRun{Host: "h", Results: []CheckResult{{Outcome: OutcomePassed}}},
			wantErr: "without a name",
		},
		{
			name:    "bad outcome",
			run:     CheckRun{Host: "h", Results: []CheckResult{{Name: "home", Outcome: "maybe"}}},
			wantErr: "invalid outcome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestListOptions_Normalize(t *testing.T) {
	opts := ListOptions{Limit: 500, Offset: -3}
	opts.Normalize()
	assert.Equal(t, DefaultLimit, opts.Limit)
	assert.Equal(t, 0, opts.Offset)

	opts = ListOptions{Limit: 5}
	opts.Normalize()
	assert.Equal(t, 5, opts.Limit)
}
