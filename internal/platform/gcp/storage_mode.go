package gcp

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	// ObjectStorageModeMemory keeps objects in process; local development only.
	ObjectStorageModeMemory ObjectStorageMode = "memory"
)

func (m ObjectStorageMode) Supported() bool {
	switch m {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeMemory:
		return true
	}
	return false
}

// StorageConfig selects the object storage backend and names the buckets the
// dashboard reads and writes.
type StorageConfig struct {
	Mode          ObjectStorageMode
	EmulatorHost  string
	PublicBaseURL string

	MediaBucket   string
	ReportBucket  string
	SecretsBucket string
	MediaCDN      string

	// ModeInferred is set when the mode was not configured and the emulator
	// host decided it.
	ModeInferred bool
}

type StorageConfigError struct {
	Field string
	Value string
	Cause error
}

func (e *StorageConfigError) Error() string {
	switch e.Field {
	case "OBJECT_STORAGE_MODE":
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)", e.Value,
			ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeMemory)
	case "STORAGE_EMULATOR_HOST":
		if e.Value == "" {
			return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", ObjectStorageModeGCSEmulator)
		}
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	default:
		return fmt.Sprintf("invalid %s=%q", e.Field, e.Value)
	}
}

func (e *StorageConfigError) Unwrap() error { return e.Cause }

func ResolveStorageConfigFromEnv() (StorageConfig, error) {
	return ResolveStorageConfig(os.Getenv)
}

// ResolveStorageConfig reads the storage settings through getenv. An unset mode
// means gcs, or gcs_emulator when STORAGE_EMULATOR_HOST is present.
func ResolveStorageConfig(getenv func(string) string) (StorageConfig, error) {
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }
	cfg := StorageConfig{
		EmulatorHost:  strings.TrimRight(get("STORAGE_EMULATOR_HOST"), "/"),
		PublicBaseURL: strings.TrimRight(get("OBJECT_STORAGE_PUBLIC_BASE_URL"), "/"),
		MediaBucket:   get("MANAGED_MEDIA_BUCKET"),
		ReportBucket:  get("REPORT_BUCKET"),
		SecretsBucket: get("SECRET_BUNDLE_BUCKET"),
		MediaCDN:      get("MANAGED_MEDIA_CDN_DOMAIN"),
	}
	raw := get("OBJECT_STORAGE_MODE")
	cfg.Mode = ObjectStorageMode(strings.ToLower(raw))
	if cfg.Mode == "" {
		cfg.Mode = ObjectStorageModeGCS
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.ModeInferred = true
		}
	}
	if !cfg.Mode.Supported() {
		return cfg, &StorageConfigError{Field: "OBJECT_STORAGE_MODE", Value: raw}
	}
	return cfg, cfg.Validate()
}

func (cfg StorageConfig) Validate() error {
	if !cfg.Mode.Supported() {
		return &StorageConfigError{Field: "OBJECT_STORAGE_MODE", Value: string(cfg.Mode)}
	}
	if cfg.PublicBaseURL != "" && !absoluteURL(cfg.PublicBaseURL) {
		return &StorageConfigError{Field: "OBJECT_STORAGE_PUBLIC_BASE_URL", Value: cfg.PublicBaseURL}
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		return nil
	}
	if cfg.EmulatorHost == "" || !absoluteURL(cfg.EmulatorHost) {
		return &StorageConfigError{Field: "STORAGE_EMULATOR_HOST", Value: cfg.EmulatorHost}
	}
	return nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// publicBase is the URL prefix objects are served under, without the bucket.
func (cfg StorageConfig) publicBase() string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Mode == ObjectStorageModeGCSEmulator:
		return cfg.EmulatorHost
	default:
		return "https://storage.googleapis.com"
	}
}
