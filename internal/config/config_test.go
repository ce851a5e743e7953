package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPERATOR_KEY", "operator-secret")
	t.Setenv("OPERATOR_TOKEN_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("SESSION_STORE", "memory")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.CodeGenerateMax != 10000 || cfg.CodeLength != 10 {
		t.Fatalf("unexpected code defaults: max=%d len=%d", cfg.CodeGenerateMax, cfg.CodeLength)
	}
}

func TestLoadRejectsMissingOperatorKey(t *testing.T) {
	setValidEnv(t)
	t.Setenv("OPERATOR_KEY", "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := classifyConfigLoadError(err); got != "validation" {
		t.Fatalf("expected validation class, got %q (%v)", got, err)
	}
	if !strings.Contains(err.Error(), "OPERATOR_KEY") {
		t.Fatalf("expected OPERATOR_KEY in error, got %v", err)
	}
}

func TestLoadRejectsUnknownSessionStore(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SESSION_STORE", "Memcached")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "SESSION_STORE") {
		t.Fatalf("expected session store validation error, got %v", err)
	}
}

func TestLoadParseErrorClassified(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if got := classifyConfigLoadError(err); got != "parse" {
		t.Fatalf("expected parse class, got %q (%v)", got, err)
	}
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	setValidEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	file := filepath.Join(t.TempDir(), "test.env")
	content := "HTTP_ADDR=:7070\nFILES_DIR=/srv/downloads\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("FILES_DIR") })

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected environment to win, got %q", cfg.HTTPAddr)
	}
	if cfg.FilesDir != "/srv/downloads" {
		t.Fatalf("expected FILES_DIR from file, got %q", cfg.FilesDir)
	}
}

func TestLoadMissingEnvFileIsNoop(t *testing.T) {
	setValidEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadStorageSkipsServerOnlySettings(t *testing.T) {
	t.Setenv("OPERATOR_KEY", "")
	t.Setenv("OPERATOR_TOKEN_SECRET", "")
	t.Setenv("SESSION_STORE", "bogus")

	cfg, err := LoadStorage("")
	if err != nil {
		t.Fatalf("load storage: %v", err)
	}
	if cfg.DatabaseURL == "" {
		t.Fatal("expected default database url")
	}

	t.Setenv("CODE_LENGTH", "3")
	if _, err := LoadStorage(""); err == nil || !strings.Contains(err.Error(), "CODE_LENGTH") {
		t.Fatalf("expected CODE_LENGTH validation error, got %v", err)
	}
}
