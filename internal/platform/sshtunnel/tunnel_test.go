package sshtunnel

import (
	"context"
	"strings"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

func TestStartRequiresAddresses(t *testing.T) {
	_, err := Start(context.Background(), Config{User: "u"}, logger.Nop())
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthMethodsNeedCredential(t *testing.T) {
	if _, err := authMethods(Config{}); err == nil {
		t.Fatalf("expected error without key or password")
	}
	methods, err := authMethods(Config{Password: "pw"})
	if err != nil || len(methods) != 1 {
		t.Fatalf("password auth: got %d methods, %v", len(methods), err)
	}
	if _, err := authMethods(Config{PrivateKey: "not a key"}); err == nil {
		t.Fatalf("expected parse error for bogus key")
	}
}

func TestHostKeyCallbackMissingFile(t *testing.T) {
	if _, err := hostKeyCallback(Config{KnownHostsPath: t.TempDir() + "/nope"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing known_hosts")
	}
	if cb, err := hostKeyCallback(Config{}, logger.Nop()); err != nil || cb == nil {
		t.Fatalf("insecure fallback: %v", err)
	}
}
