package health

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckFunc adapts a plain probe function into a named Checker.
type CheckFunc struct {
	Name  string
	Probe func(ctx context.Context) error
}

func (c CheckFunc) Check(ctx context.Context) CheckResult {
	if c.Probe == nil {
		return CheckResult{Name: c.Name, Healthy: true}
	}
	if err := c.Probe(ctx); err != nil {
		return CheckResult{Name: c.Name, Healthy: false, Error: err.Error()}
	}
	return CheckResult{Name: c.Name, Healthy: true}
}

// ProbeRunner runs all checkers concurrently. The overall timeout bounds the
// whole run; perCheck, when positive, bounds each checker on its own.
type ProbeRunner struct {
	timeout  time.Duration
	perCheck time.Duration
	checkers []Checker
}

func NewProbeRunner(timeout, perCheck time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &ProbeRunner{timeout: timeout, perCheck: perCheck, checkers: checkers}
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]CheckResult, len(p.checkers))
	var g errgroup.Group
	for i, checker := range p.checkers {
		g.Go(func() error {
			results[i] = p.run(ctx, checker)
			return nil
		})
	}
	_ = g.Wait()

	ready := true
	for _, res := range results {
		if !res.Healthy {
			ready = false
		}
	}
	return ready, results
}

func (p *ProbeRunner) run(ctx context.Context, checker Checker) CheckResult {
	if p.perCheck > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.perCheck)
		defer cancel()
	}
	done := make(chan CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- CheckResult{Name: checkerName(checker), Error: fmt.Sprintf("probe panic: %v", r)}
			}
		}()
		done <- checker.Check(ctx)
	}()
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return CheckResult{Name: checkerName(checker), Error: "probe timed out: " + ctx.Err().Error()}
	}
}

func checkerName(c Checker) string {
	if named, ok := c.(CheckFunc); ok {
		return named.Name
	}
	return fmt.Sprintf("%T", c)
}
