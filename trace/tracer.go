package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"luax/types"
)

// Tracer provides execution tracing for debugging
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// Global tracer instance
var globalTracer *Tracer

// Init initializes the global tracer
func Init(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalTracer = &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled returns whether tracing is enabled
func IsEnabled() bool {
	if globalTracer == nil {
		return false
	}
	return globalTracer.enabled
}

// matchesFilter checks if a function name matches any of the filter patterns
func (t *Tracer) matchesFilter(fnName string) bool {
	if len(t.filters) == 0 {
		return true // No filters = trace everything
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, fnName); matched {
			return true
		}
	}
	return false
}

// Call logs a function call
func (t *Tracer) Call(depth int, fnName string, args []types.Value) {
	if !t.enabled || !t.matchesFilter(fnName) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Format args
	argStrs := make([]string, len(args))
	for i, arg := range args {
		argStrs[i] = arg.String()
	}
	argsStr := strings.Join(argStrs, ", ")

	fmt.Fprintf(t.writer, "[TRACE] CALL %s args=[%s] depth=%d\n",
		fnName, argsStr, depth)
}

// Return logs a function's result values
func (t *Tracer) Return(depth int, fnName string, results []types.Value) {
	if !t.enabled || !t.matchesFilter(fnName) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	resultStrs := make([]string, len(results))
	for i, res := range results {
		resultStrs[i] = res.String()
	}

	fmt.Fprintf(t.writer, "[TRACE] RETURN %s => %s\n",
		fnName, strings.Join(resultStrs, ", "))
}

// Fault logs an error propagating out of a function
func (t *Tracer) Fault(depth int, fnName string, errval types.Value) {
	if !t.enabled || !t.matchesFilter(fnName) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	display := errval.String()
	// Truncate long error values for readability
	if len(display) > 120 {
		display = display[:117] + "..."
	}

	fmt.Fprintf(t.writer, "[TRACE] FAULT %s %s\n", fnName, display)
}

// Global convenience functions

// Call logs a function call using the global tracer
func Call(depth int, fnName string, args []types.Value) {
	if globalTracer != nil {
		globalTracer.Call(depth, fnName, args)
	}
}

// Return logs a function return using the global tracer
func Return(depth int, fnName string, results []types.Value) {
	if globalTracer != nil {
		globalTracer.Return(depth, fnName, results)
	}
}

// Fault logs a propagating error using the global tracer
func Fault(depth int, fnName string, errval types.Value) {
	if globalTracer != nil {
		globalTracer.Fault(depth, fnName, errval)
	}
}
