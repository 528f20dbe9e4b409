package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Outcome is the result of one preliminary check
type Outcome string

const (
	// OutcomePassed marks a check that found the environment as expected
	OutcomePassed Outcome = "passed"
	// OutcomeFailed marks a check that found a problem
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped marks a check whose product is not configured
	OutcomeSkipped Outcome = "skipped"
)

// Valid reports whether the outcome is one of the known values
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePassed, OutcomeFailed, OutcomeSkipped:
		return true
	}
	return false
}

// CheckRun is one execution of the preliminary checks against a PI System
type CheckRun struct {
	gorm.Model
	Host       string        `json:"host" gorm:"not null;index"`
	StartedAt  time.Time     `json:"started_at" gorm:"index"`
	FinishedAt time.Time     `json:"finished_at"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Results    []CheckResult `json:"results" gorm:"foreignKey:CheckRunID;constraint:OnDelete:CASCADE"`
}

// CheckResult is the outcome of a single check inside a run
type CheckResult struct {
	gorm.Model
	CheckRunID uint    `json:"-" gorm:"not null;index"`
	Name       string  `json:"name" gorm:"not null"`
	Outcome    Outcome `json:"outcome" gorm:"not null"`
	Message    string  `json:"message" gorm:"type:text"`
	DurationMS int64   `json:"duration_ms"`
}

// Tally recomputes the outcome counters from the results
func (r *CheckRun) Tally() {
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomePassed:
			r.Passed++
		case OutcomeFailed:
			r.Failed++
		case OutcomeSkipped:
			r.Skipped++
		}
	}
}

// Succeeded reports whether no check of the run failed
func (r *CheckRun) Succeeded() bool {
	return r.Failed == 0
}

// Validate checks the run before it is stored
func (r *CheckRun) Validate() error {
	if r.Host == "" {
		return fmt.Errorf("check run host is required")
	}
	for _, res := range r.Results {
		if res.Name == "" {
			return fmt.Errorf("check result without a name")
		}
		if !res.Outcome.Valid() {
			return fmt.Errorf("check %q has an invalid outcome %q", res.Name, res.Outcome)
		}
	}
	return nil
}
