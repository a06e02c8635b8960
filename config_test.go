package transloader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/six8/transloader"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := transloader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != transloader.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != transloader.DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("TRANSLOADIT_KEY", "env-key")
	t.Setenv("TRANSLOADIT_SECRET", "env-secret")
	t.Setenv("TRANSLOADIT_BASE_URL", "http://proxy.internal")
	t.Setenv("TRANSLOADIT_TIMEOUT", "5s")

	cfg, err := transloader.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Key != "env-key" {
		t.Errorf("Key = %q", cfg.Key)
	}
	if cfg.Secret != "env-secret" {
		t.Errorf("Secret = %q", cfg.Secret)
	}
	if cfg.BaseURL != "http://proxy.internal" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("TRANSLOADIT_KEY", "")
	t.Setenv("TRANSLOADIT_SECRET", "")

	if _, err := transloader.NewFromEnv(); !errors.Is(err, transloader.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestNewFromEnv(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/assemblies", func(w http.ResponseWriter, req *http.Request) {
		p := requestParams(t, req)
		auth, _ := p["auth"].(map[string]any)
		if auth["key"] != testKey {
			t.Errorf("auth.key = %v", auth["key"])
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"count": 0, "items": []any{}})
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	t.Setenv("TRANSLOADIT_KEY", testKey)
	t.Setenv("TRANSLOADIT_SECRET", testSecret)
	t.Setenv("TRANSLOADIT_BASE_URL", ts.URL)

	c, err := transloader.NewFromEnv(transloader.WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}

	it := c.Assemblies()
	_ = it.Next(context.Background())
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
}
