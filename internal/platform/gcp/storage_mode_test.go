package gcp

import (
	"errors"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := ResolveStorageConfig(envMap(nil))
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || cfg.ModeInferred {
		t.Fatalf("mode: want=%q inferred=false got=%q inferred=%v", ObjectStorageModeGCS, cfg.Mode, cfg.ModeInferred)
	}
}

func TestResolveStorageConfigInfersEmulator(t *testing.T) {
	cfg, err := ResolveStorageConfig(envMap(map[string]string{"STORAGE_EMULATOR_HOST": "http://fake-gcs:4443/"}))
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator || !cfg.ModeInferred {
		t.Fatalf("mode: got=%q inferred=%v", cfg.Mode, cfg.ModeInferred)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: want trailing slash trimmed got=%q", cfg.EmulatorHost)
	}
}

func TestResolveStorageConfigExplicitGCSIgnoresEmulator(t *testing.T) {
	cfg, err := ResolveStorageConfig(envMap(map[string]string{
		"OBJECT_STORAGE_MODE":   "GCS",
		"STORAGE_EMULATOR_HOST": "http://fake-gcs:4443",
	}))
	if err != nil {
		t.Fatalf("ResolveStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
}

func TestResolveStorageConfigErrors(t *testing.T) {
	cases := []map[string]string{
		{"OBJECT_STORAGE_MODE": "local"},
		{"OBJECT_STORAGE_MODE": "gcs_emulator"},
		{"OBJECT_STORAGE_MODE": "gcs_emulator", "STORAGE_EMULATOR_HOST": "fake-gcs:4443"},
		{"OBJECT_STORAGE_PUBLIC_BASE_URL": "localhost"},
	}
	for _, env := range cases {
		_, err := ResolveStorageConfig(envMap(env))
		var cfgErr *StorageConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%v: want *StorageConfigError got %v", env, err)
		}
	}
}

func TestPublicURL(t *testing.T) {
	cfg := StorageConfig{Mode: ObjectStorageModeGCS, MediaBucket: "media-b", ReportBucket: "rep"}
	if got := cfg.PublicURL(BucketMedia, "/1/facebook/image/h1"); got != "https://storage.googleapis.com/media-b/1/facebook/image/h1" {
		t.Fatalf("gcs url: got=%q", got)
	}
	cfg.MediaCDN = "cdn.example.com"
	if got := cfg.PublicURL(BucketMedia, "k"); got != "https://cdn.example.com/k" {
		t.Fatalf("cdn url: got=%q", got)
	}
	if got := cfg.PublicURL(BucketReports, "r.html"); got != "https://storage.googleapis.com/rep/r.html" {
		t.Fatalf("reports url: got=%q", got)
	}

	emu := StorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443", MediaBucket: "media-b"}
	if got := emu.PublicURL(BucketMedia, "a/b"); got != "http://fake-gcs:4443/storage/v1/b/media-b/o/a%2Fb?alt=media" {
		t.Fatalf("emulator url: got=%q", got)
	}
	emu.PublicBaseURL = "http://localhost:4443"
	if got := emu.PublicURL(BucketMedia, "a/b"); got != "http://localhost:4443/media-b/a/b" {
		t.Fatalf("emulator public base: got=%q", got)
	}
}

func TestManagedPrefix(t *testing.T) {
	if got := (StorageConfig{Mode: ObjectStorageModeGCS}).ManagedPrefix(); got != "" {
		t.Fatalf("no media bucket: want empty got=%q", got)
	}
	cfg := StorageConfig{Mode: ObjectStorageModeGCS, MediaBucket: "media-b"}
	if got := cfg.ManagedPrefix(); got != "https://storage.googleapis.com/media-b/" {
		t.Fatalf("gcs prefix: got=%q", got)
	}
	key := "7/facebook/image/h1.png"
	if !strings.HasPrefix(cfg.PublicURL(BucketMedia, key), cfg.ManagedPrefix()) {
		t.Fatalf("stored url must start with the managed prefix")
	}
	cfg.MediaCDN = "cdn.example.com"
	if got := cfg.ManagedPrefix(); got != "https://cdn.example.com/" {
		t.Fatalf("cdn prefix: got=%q", got)
	}
}
