package config

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyConfigLoadError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "none", err: nil, want: "none"},
		{name: "env file", err: fmt.Errorf("load env file: %w", errors.New("unexpected character")), want: "env_file"},
		{name: "parse", err: errors.New("parse env: SESSION_TTL: invalid duration"), want: "parse"},
		{name: "validation", err: errors.New("validate config: OPERATOR_KEY is required"), want: "validation"},
		{name: "validation mentioning parse", err: errors.New("validate config: parse env looked fine"), want: "validation"},
		{name: "other", err: errors.New("disk on fire"), want: "load"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConfigLoadError(tc.err); got != tc.want {
				t.Fatalf("classifyConfigLoadError()=%q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeConfigProfile(t *testing.T) {
	cases := map[string]string{
		"  ProD  ":    "prod",
		"development": "development",
		"   ":         "unknown",
		"":            "unknown",
	}
	for in, want := range cases {
		if got := normalizeConfigProfile(in); got != want {
			t.Fatalf("normalizeConfigProfile(%q)=%q want %q", in, got, want)
		}
	}
}

func TestRecordConfigLoadWithoutMeterProvider(t *testing.T) {
	// The global noop meter must accept events from both scopes.
	recordConfigLoad(context.Background(), configLoadEvent{profile: "", scope: loadScopeStorage, outcome: "success", errorClass: "none"})
	recordConfigLoad(context.Background(), configLoadEvent{profile: "prod", scope: loadScopeServer, outcome: "error", errorClass: "validation"})
}
