package doctor

import (
	"context"
	"fmt"
	"time"
)

// Check is one diagnostic. Run must not modify anything on disk; repairs
// belong in Fixer.
type Check interface {
	Name() string
	Category() string

	// Run returns nil when the check does not apply.
	Run(ctx context.Context) *CheckResult
}

// Runner executes checks in registration order.
type Runner struct {
	checks []Check
}

// NewRunner creates a runner with the given checks.
func NewRunner(checks ...Check) *Runner {
	r := &Runner{checks: make([]Check, 0, len(checks))}
	for _, c := range checks {
		r.AddCheck(c)
	}
	return r
}

// AddCheck appends c.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Checks returns the registered checks in run order.
func (r *Runner) Checks() []Check {
	return r.checks
}

// Run executes every check and tallies the results. A check that panics is
// reported as an error instead of taking the whole run down. Once ctx is
// done the remaining checks are skipped and the report is marked
// interrupted.
func (r *Runner) Run(ctx context.Context) *DoctorReport {
	start := time.Now()
	report := &DoctorReport{
		Timestamp: start.UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		began := time.Now()
		result := runCheck(ctx, check)
		if result == nil {
			continue
		}
		result.Duration = time.Since(began)
		report.add(result)
	}

	report.Duration = time.Since(start)
	return report
}

func runCheck(ctx context.Context, check Check) (result *CheckResult) {
	defer func() {
		if p := recover(); p != nil {
			result = &CheckResult{
				Name:     check.Name(),
				Category: check.Category(),
				Status:   SeverityError,
				Message:  fmt.Sprintf("check crashed: %v", p),
			}
		}
	}()
	return check.Run(ctx)
}

// DoctorReport aggregates all check results with timing and summary.
type DoctorReport struct {
	// Timestamp is when the diagnostic run started.
	Timestamp time.Time `json:"timestamp"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration_ns"`

	// Interrupted is set when the run was cancelled before every check ran.
	Interrupted bool `json:"interrupted,omitempty"`

	Results []*CheckResult `json:"results"`
	Summary Summary        `json:"summary"`
}

func (r *DoctorReport) add(res *CheckResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case SeverityPass:
		r.Summary.Passed++
	case SeverityInfo:
		r.Summary.Info++
	case SeverityWarning:
		r.Summary.Warnings++
	case SeverityError:
		r.Summary.Errors++
	}
}

// HasErrors returns true if any check has SeverityError.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if any check has SeverityWarning, or the run
// was cut short.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0 || r.Interrupted
}
