package logger

import "testing"

func TestSanitizeKVsRedactsCredentialKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"token1", "abc",
		"account_id", "act_1",
		"AIRBYTE_PASSWORD", "pw",
		"payload", map[string]interface{}{"token2": "x", "name": "n"},
		"dangling",
	})
	if len(out) != 9 {
		t.Fatalf("len: want=9 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("token1: want=[REDACTED] got=%v", out[1])
	}
	if out[3] != "act_1" {
		t.Fatalf("account_id: want=act_1 got=%v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[5])
	}
	nested, ok := out[7].(map[string]interface{})
	if !ok {
		t.Fatalf("payload: expected map, got %T", out[7])
	}
	if nested["token2"] != "[REDACTED]" || nested["name"] != "n" {
		t.Fatalf("payload: got %v", nested)
	}
	if out[8] != "dangling" {
		t.Fatalf("dangling key dropped: %v", out)
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	if got := levelFromEnv().String(); got != "warn" {
		t.Fatalf("level: want=warn got=%s", got)
	}
	t.Setenv("LOG_LEVEL", "bogus")
	if got := levelFromEnv().String(); got != "info" {
		t.Fatalf("level: want=info got=%s", got)
	}
}
