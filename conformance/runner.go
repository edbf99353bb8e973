package conformance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"luax/eval"
	"luax/types"
)

// StepBudget bounds each test run so a broken chunk cannot hang the suite
const StepBudget = 1_000_000

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error
}

// Runner executes conformance tests. Every test runs in a fresh interpreter so
// suites cannot leak globals into each other.
type Runner struct {
	stepLimit int64
}

// NewRunner creates a new test runner
func NewRunner() *Runner {
	return &Runner{stepLimit: StepBudget}
}

// Run executes a single test case
func (r *Runner) Run(test LoadedTest) TestResult {
	if skipped, reason := test.Test.IsSkipped(); skipped {
		return TestResult{
			Test:       test,
			Skipped:    true,
			SkipReason: reason,
		}
	}

	if strings.TrimSpace(test.Test.Chunk) == "" {
		return TestResult{
			Test:       test,
			Skipped:    true,
			SkipReason: "no chunk",
		}
	}

	var out bytes.Buffer
	in := eval.New(eval.Options{Output: &out, StepLimit: r.stepLimit})

	args := make([]types.Value, len(test.Test.Args))
	for i, a := range test.Test.Args {
		args[i] = types.NewStr(a)
	}

	vals, err := in.Run(context.Background(), []byte(test.Test.Chunk), args...)

	passed, cerr := r.checkExpectation(test.Test, vals, err, out.String())
	return TestResult{
		Test:   test,
		Passed: passed,
		Error:  cerr,
	}
}

// RunAll executes all loaded tests
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, test := range tests {
		results[i] = r.Run(test)
	}
	return results
}

// SummaryStats computes statistics from test results
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats generates statistics from test results
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// checkExpectation checks if the run matches the expected outcome
func (r *Runner) checkExpectation(test TestCase, vals []types.Value, runErr error, output string) (bool, error) {
	expect := test.Expect

	// Check for expected fault
	if expect.Error != "" {
		if runErr == nil {
			return false, fmt.Errorf("expected error containing %q, got values: %s", expect.Error, formatValues(vals))
		}
		var lerr *eval.LuaError
		if !errors.As(runErr, &lerr) {
			return false, fmt.Errorf("expected fault containing %q, got driver error: %v", expect.Error, runErr)
		}
		if !strings.Contains(lerr.Error(), expect.Error) {
			return false, fmt.Errorf("expected error containing %q, got %q", expect.Error, lerr.Error())
		}
		return true, nil
	}

	if runErr != nil {
		return false, fmt.Errorf("unexpected error: %v", runErr)
	}

	checked := false

	// Check returned values. An explicit empty list means the chunk must
	// return nothing.
	if expect.Values != nil {
		want := make([]types.Value, len(expect.Values))
		for i, raw := range expect.Values {
			v, err := convertYAMLValue(raw)
			if err != nil {
				return false, fmt.Errorf("failed to convert expected value: %w", err)
			}
			want[i] = v
		}

		if len(vals) != len(want) {
			return false, fmt.Errorf("expected %d values, got %d: %s", len(want), len(vals), formatValues(vals))
		}
		for i := range want {
			if !vals[i].Equal(want[i]) {
				return false, fmt.Errorf("value %d: expected %s, got %s", i+1, want[i].String(), vals[i].String())
			}
		}
		checked = true
	}

	// Check the type of the first returned value
	if expect.Type != "" {
		if len(vals) == 0 {
			return false, fmt.Errorf("expected a %s value, got none", expect.Type)
		}
		if got := vals[0].Type().String(); got != expect.Type {
			return false, fmt.Errorf("expected type %s, got %s", expect.Type, got)
		}
		checked = true
	}

	// Check captured print output
	if expect.Output != "" {
		if output != expect.Output {
			return false, fmt.Errorf("expected output %q, got %q", expect.Output, output)
		}
		checked = true
	}

	if !checked {
		return false, fmt.Errorf("no expectation specified")
	}
	return true, nil
}

// convertYAMLValue converts a YAML scalar to a runtime value. Tables are
// reference values, so suites compare those field by field inside the chunk
// rather than here.
func convertYAMLValue(v interface{}) (types.Value, error) {
	switch val := v.(type) {
	case nil:
		return types.Nil, nil
	case bool:
		return types.NewBool(val), nil
	case int:
		return types.NewNumber(float64(val)), nil
	case int64:
		return types.NewNumber(float64(val)), nil
	case float64:
		return types.NewNumber(val), nil
	case string:
		return types.NewStr(val), nil
	default:
		return nil, fmt.Errorf("unsupported YAML type: %T", v)
	}
}

func formatValues(vals []types.Value) string {
	if len(vals) == 0 {
		return "(none)"
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
