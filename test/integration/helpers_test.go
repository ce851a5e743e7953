package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/sandeepkv93/one-time-unlock-service/internal/app"
	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/di"
)

const (
	operatorKey   = "integration-operator-key"
	sessionCookie = "unlock_session"
)

var protectedFiles = map[string]string{
	"guide.pdf": "%PDF-1.4 integration guide",
	"notes.txt": "release notes",
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type stack struct {
	redis *miniredis.Miniredis
}

// newStack points the environment at a fresh SQLite file, a miniredis
// session store and a populated files directory.
func newStack(t *testing.T) *stack {
	t.Helper()
	dir := t.TempDir()
	filesDir := filepath.Join(dir, "protected")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		t.Fatalf("mkdir files: %v", err)
	}
	for name, body := range protectedFiles {
		if err := os.WriteFile(filepath.Join(filesDir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mr := miniredis.RunT(t)

	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(dir, "codes.db")+"?_busy_timeout=5000&_journal_mode=WAL")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("REDIS_KEY_PREFIX", "itest_session")
	t.Setenv("SESSION_COOKIE_NAME", sessionCookie)
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("OPERATOR_KEY", operatorKey)
	t.Setenv("OPERATOR_TOKEN_SECRET", "integration-secret-0123456789abcdef")
	t.Setenv("FILES_DIR", filesDir)
	t.Setenv("CODE_PREFIX", "")
	t.Setenv("CODE_GENERATE_MAX", "100")
	t.Setenv("OTEL_METRICS_ENABLED", "false")
	t.Setenv("OTEL_TRACING_ENABLED", "false")
	t.Setenv("OTEL_LOGS_ENABLED", "false")
	return &stack{redis: mr}
}

// startServer builds the full application graph from the environment and
// serves it over httptest.
func startServer(t *testing.T) string {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	a, cleanup, err := di.InitializeApp(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("initialize app: %v", err)
	}
	srv := httptest.NewServer(a.Server.Handler)
	t.Cleanup(func() {
		srv.Close()
		shutdown(t, a)
		cleanup()
	})
	return srv.URL
}

func shutdown(t *testing.T, a *app.App) {
	t.Helper()
	if err := a.Shutdown(context.Background()); err != nil {
		t.Logf("shutdown: %v", err)
	}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doRaw(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	resp, raw := doRaw(t, client, method, url, body, headers)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope (status %d): %v\n%s", resp.StatusCode, err, raw)
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

func operatorHeaders() map[string]string {
	return map[string]string{"X-Operator-Key": operatorKey}
}

// generateCodes asks the operator API for a batch and returns the code values.
func generateCodes(t *testing.T, baseURL string, count int) []string {
	t.Helper()
	resp, env := doJSON(t, http.DefaultClient, http.MethodPost, baseURL+"/api/v1/operator/codes",
		map[string]any{"count": count, "batch": "itest"}, operatorHeaders())
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("generate: status=%d error=%+v", resp.StatusCode, env.Error)
	}
	var res struct {
		Inserted int `json:"inserted"`
		Codes    []struct {
			Code string `json:"code"`
		} `json:"codes"`
	}
	decodeData(t, env, &res)
	if res.Inserted != count || len(res.Codes) != count {
		t.Fatalf("expected %d codes, got inserted=%d codes=%d", count, res.Inserted, len(res.Codes))
	}
	codes := make([]string, 0, count)
	for _, c := range res.Codes {
		codes = append(codes, c.Code)
	}
	return codes
}

func redeem(t *testing.T, client *http.Client, baseURL, code string) (*http.Response, envelope) {
	t.Helper()
	return doJSON(t, client, http.MethodPost, baseURL+"/api/v1/redeem", map[string]string{"code": code}, nil)
}

func sessionKeys(mr *miniredis.Miniredis) []string {
	keys := make([]string, 0)
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "itest_session:") {
			keys = append(keys, k)
		}
	}
	return keys
}

func captureAuditEvents(t *testing.T, fn func()) []map[string]any {
	t.Helper()
	var logBuf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer slog.SetDefault(previous)

	fn()
	events := make([]map[string]any, 0)
	for _, line := range strings.Split(logBuf.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if msg, _ := event["msg"].(string); msg == "audit" {
			events = append(events, event)
		}
	}
	return events
}

func requireAuditEvent(t *testing.T, events []map[string]any, name string) map[string]any {
	t.Helper()
	for _, event := range events {
		if got, _ := event["event"].(string); got == name {
			return event
		}
	}
	t.Fatalf("expected audit event %q, got %#v", name, events)
	return nil
}
