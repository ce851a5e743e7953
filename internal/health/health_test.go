package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type staticChecker struct{ res CheckResult }

func (s staticChecker) Check(context.Context) CheckResult { return s.res }

func TestProbeRunnerAllHealthy(t *testing.T) {
	runner := NewProbeRunner(time.Second, 0,
		CheckFunc{Name: "db", Probe: func(context.Context) error { return nil }},
		staticChecker{res: CheckResult{Name: "sessions", Healthy: true}},
	)
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 2 {
		t.Fatalf("unexpected readiness %v %+v", ready, results)
	}
	if results[0].Name != "db" || results[1].Name != "sessions" {
		t.Fatalf("results must keep registration order: %+v", results)
	}
}

func TestProbeRunnerReportsFailures(t *testing.T) {
	runner := NewProbeRunner(time.Second, 50*time.Millisecond,
		CheckFunc{Name: "db", Probe: func(context.Context) error { return errors.New("db down") }},
		CheckFunc{Name: "slow", Probe: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
		CheckFunc{Name: "ok", Probe: func(context.Context) error { return nil }},
	)
	ready, results := runner.Ready(context.Background())
	if ready {
		t.Fatal("expected not ready")
	}
	if results[0].Healthy || results[0].Error != "db down" {
		t.Fatalf("unexpected db result: %+v", results[0])
	}
	if results[1].Healthy || results[1].Error == "" || results[1].Name != "slow" {
		t.Fatalf("expected slow probe to time out: %+v", results[1])
	}
	if !results[2].Healthy {
		t.Fatalf("independent probe must stay healthy: %+v", results[2])
	}
}

func TestProbeRunnerRecoversPanics(t *testing.T) {
	runner := NewProbeRunner(time.Second, 0, CheckFunc{Name: "boom", Probe: func(context.Context) error { panic("boom") }})
	ready, results := runner.Ready(context.Background())
	if ready || results[0].Healthy || results[0].Name != "boom" {
		t.Fatalf("expected panic to fail readiness: %+v", results)
	}
}

func TestProbeRunnerNoChecksIsReady(t *testing.T) {
	if ready, _ := NewProbeRunner(0, 0).Ready(context.Background()); !ready {
		t.Fatal("expected ready with no checks")
	}
}
