package airbyte

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/secrets"
)

func TestListConnections(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/connections/list" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "u" || pass != "p" {
			t.Errorf("basic auth: got %q/%q ok=%v", user, pass, ok)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["workspaceId"] != "ws-fb" {
			t.Errorf("workspaceId: got %q", body["workspaceId"])
		}
		if calls.Load() == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"connections":[{"connectionId":"c1","name":"fb_12_main","status":"active"}]}`))
	}))
	defer srv.Close()

	c := New(Config{
		Workspaces: map[ads.Channel]Workspace{ads.ChannelFacebook: {Endpoint: srv.URL, WorkspaceID: "ws-fb"}},
		Username:   "u",
		Password:   "p",
	}, logger.Nop())

	conns, err := c.ListConnections(context.Background(), ads.ChannelFacebook)
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(conns) != 1 || conns[0].Status != StatusActive {
		t.Fatalf("connections: got=%+v", conns)
	}
	if calls.Load() != 2 {
		t.Fatalf("retry on 502: want 2 calls got %d", calls.Load())
	}
}

func TestListConnectionsClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Config{Workspaces: map[ads.Channel]Workspace{ads.ChannelGoogle: {Endpoint: srv.URL, WorkspaceID: "ws"}}}, logger.Nop())
	_, err := c.ListConnections(context.Background(), ads.ChannelGoogle)
	if !ads.IsCode(err, ads.CodeUpstream) {
		t.Fatalf("401: want upstream error got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("401 retried: calls=%d", calls.Load())
	}
}

func TestListConnectionsChannelErrors(t *testing.T) {
	c := New(Config{}, logger.Nop())
	if _, err := c.ListConnections(context.Background(), ads.ChannelTikTok); !errors.Is(err, ads.ErrUnknownChannel) {
		t.Fatalf("tiktok: want ErrUnknownChannel got %v", err)
	}
	if _, err := c.ListConnections(context.Background(), ads.ChannelFacebook); !errors.Is(err, ads.ErrMissingConfig) {
		t.Fatalf("unconfigured facebook: want ErrMissingConfig got %v", err)
	}
}

func TestBrandID(t *testing.T) {
	if id, err := (Connection{Name: "facebook_42_prod"}).BrandID(); err != nil || id != 42 {
		t.Fatalf("BrandID: got=%d err=%v", id, err)
	}
	for _, name := range []string{"nounderscore", "fb_x_prod"} {
		if _, err := (Connection{Name: name}).BrandID(); err == nil {
			t.Fatalf("%q: want error", name)
		}
	}
}

func TestConfigFromSecrets(t *testing.T) {
	cfg := ConfigFromSecrets(secrets.Bundle{
		"FACEBOOK_AIRBYTE_ENDPOINT": "https://airbyte.example/",
		"FACEBOOK_WORKSPACE_ID":     "ws-fb",
		"AIRBYTE_USERNAME":          "u",
	})
	ws, ok := cfg.Workspaces[ads.ChannelFacebook]
	if !ok || ws.Endpoint != "https://airbyte.example" || ws.WorkspaceID != "ws-fb" {
		t.Fatalf("facebook workspace: got=%+v ok=%v", ws, ok)
	}
	if _, ok := cfg.Workspaces[ads.ChannelGoogle]; ok {
		t.Fatalf("google should be absent without endpoint")
	}
	if cfg.Username != "u" {
		t.Fatalf("username: got=%q", cfg.Username)
	}
}
