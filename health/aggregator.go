package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-intercept/component"
)

type entry struct {
	checker  Checker
	optional bool
}

// Aggregator runs every registered checker concurrently under one timeout
//
// A failing required checker makes the response unhealthy; a failing optional one only
// degrades it.
type Aggregator struct {
	entries  []entry
	timeout  time.Duration
	metadata map[string]any
	mu       sync.RWMutex
}

// NewAggregator creates an aggregator (5s timeout when timeout <= 0)
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]any),
	}
}

// Register adds a required checker (nil is ignored)
func (a *Aggregator) Register(checker Checker) {
	a.add(checker, false)
}

// RegisterOptional adds a checker whose failure only degrades the response
func (a *Aggregator) RegisterOptional(checker Checker) {
	a.add(checker, true)
}

// RegisterProvider registers the checker of p, if it has one
func (a *Aggregator) RegisterProvider(p component.HealthCheckProvider, optional bool) {
	if p == nil {
		return
	}
	a.add(p.GetHealthChecker(), optional)
}

func (a *Aggregator) add(checker Checker, optional bool) {
	if checker == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry{checker: checker, optional: optional})
}

// Names returns the registered checker names in registration order
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		names = append(names, e.checker.Name())
	}
	return names
}

// SetMetadata attaches a key to every response
func (a *Aggregator) SetMetadata(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check runs all checkers
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	entries := append([]entry(nil), a.entries...)
	metadata := make(map[string]any, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(entries))
	for _, e := range entries {
		go func(e entry) {
			results <- checkOne(checkCtx, e)
		}(e)
	}

	checks := make(map[string]CheckResult, len(entries))
	for range entries {
		result := <-results
		checks[result.Name] = result
	}

	return &Response{
		Status:    overallStatus(checks),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    checks,
		Metadata:  metadata,
	}
}

func checkOne(ctx context.Context, e entry) (result CheckResult) {
	start := time.Now()
	result = CheckResult{
		Name:      e.checker.Name(),
		Optional:  e.optional,
		Timestamp: start,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.Duration = time.Since(start)
		result.Status = statusOf(result.Error != "", e.optional)
	}()

	if err := e.checker.Check(ctx); err != nil {
		result.Error = err.Error()
	}
	return result
}

func statusOf(failed, optional bool) Status {
	switch {
	case !failed:
		return StatusHealthy
	case optional:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}

func overallStatus(checks map[string]CheckResult) Status {
	status := StatusHealthy
	for _, result := range checks {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
