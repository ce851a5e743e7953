package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	loadScopeServer  = "server"
	loadScopeStorage = "storage"
)

type configLoadEvent struct {
	profile    string
	scope      string
	outcome    string
	errorClass string
}

var (
	loadCounterOnce sync.Once
	loadCounter     metric.Int64Counter
)

// recordConfigLoad counts config loads by profile and by which entry point
// (the HTTP server or an offline store command) asked for them.
func recordConfigLoad(ctx context.Context, ev configLoadEvent) {
	loadCounterOnce.Do(func() {
		counter, err := otel.Meter("unlock.config").Int64Counter(
			"unlock.config.loads",
			metric.WithDescription("Configuration loads by scope and outcome"),
		)
		if err == nil {
			loadCounter = counter
		}
	})
	if loadCounter == nil {
		return
	}
	loadCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", normalizeConfigProfile(ev.profile)),
		attribute.String("scope", ev.scope),
		attribute.String("outcome", ev.outcome),
		attribute.String("error_class", ev.errorClass),
	))
}

func normalizeConfigProfile(profile string) string {
	v := strings.TrimSpace(strings.ToLower(profile))
	if v == "" {
		return "unknown"
	}
	return v
}

// classifyConfigLoadError keys off the prefixes load wraps its errors with.
func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.HasPrefix(msg, "load env file:"):
		return "env_file"
	case strings.HasPrefix(msg, "parse env:"):
		return "parse"
	case strings.HasPrefix(msg, "validate config:"):
		return "validation"
	default:
		return "load"
	}
}
