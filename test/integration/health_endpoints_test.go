package integration

import (
	"net/http"
	"testing"
)

func TestHealthLiveAndReadyEndpoints(t *testing.T) {
	st := newStack(t)
	baseURL := startServer(t)
	client := newClient(t)

	t.Run("live endpoint stable 200 payload", func(t *testing.T) {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/live", nil, nil)
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("health live failed: status=%d success=%v", resp.StatusCode, env.Success)
		}
		var data map[string]any
		decodeData(t, env, &data)
		if got, _ := data["status"].(string); got != "ok" {
			t.Fatalf("expected status=ok, got %+v", data)
		}
	})

	t.Run("ready reports every dependency", func(t *testing.T) {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/ready", nil, nil)
		if resp.StatusCode != http.StatusOK || !env.Success {
			t.Fatalf("health ready failed: status=%d error=%+v", resp.StatusCode, env.Error)
		}
		var data struct {
			Status string `json:"status"`
			Checks []struct {
				Name    string `json:"name"`
				Healthy bool   `json:"healthy"`
			} `json:"checks"`
		}
		decodeData(t, env, &data)
		if data.Status != "ready" {
			t.Fatalf("expected status=ready, got %+v", data)
		}
		seen := map[string]bool{}
		for _, c := range data.Checks {
			seen[c.Name] = c.Healthy
		}
		if !seen["database"] || !seen["session_store"] {
			t.Fatalf("expected healthy database and session_store checks, got %+v", data.Checks)
		}
	})

	t.Run("ready fails when the session store is gone", func(t *testing.T) {
		st.redis.Close()
		resp, env := doJSON(t, client, http.MethodGet, baseURL+"/health/ready", nil, nil)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != "DEPENDENCY_UNREADY" {
			t.Fatalf("expected DEPENDENCY_UNREADY, got %+v", env.Error)
		}
		if resp, _ := doJSON(t, client, http.MethodGet, baseURL+"/health/live", nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("liveness must not depend on redis, got %d", resp.StatusCode)
		}
	})
}
