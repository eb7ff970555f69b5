// Package secrets resolves credentials either from the process environment or
// from a JSON secret bundle kept in object storage.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/envutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/gcp"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
)

const DefaultBundleKey = "data-health-dashboard/secrets.json"

type Provider interface {
	// Get returns the value for key or def when it is not set.
	Get(key, def string) string
	Lookup(key string) (string, bool)
}

// Require fetches a mandatory secret.
func Require(p Provider, key string) (string, error) {
	v, ok := p.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", ads.NewError(ads.CodeConfig, "secrets.Require", "missing secret "+key, ads.ErrMissingConfig)
	}
	return v, nil
}

type envProvider struct{}

func Env() Provider { return envProvider{} }

func (envProvider) Get(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (envProvider) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// Bundle is a flat key/value secret document.
type Bundle map[string]string

func (b Bundle) Get(key, def string) string {
	if v, ok := b[key]; ok {
		return v
	}
	return def
}

func (b Bundle) Lookup(key string) (string, bool) {
	v, ok := b[key]
	return v, ok
}

// DecodeBundle accepts a JSON object; non-string values keep their JSON text.
func DecodeBundle(r io.Reader) (Bundle, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, ads.NewError(ads.CodeConfig, "secrets.DecodeBundle", "secret bundle is not a JSON object", err)
	}
	out := make(Bundle, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		if string(v) == "null" {
			continue
		}
		out[k] = string(v)
	}
	return out, nil
}

// Load picks the provider from USE_SECRET_BUNDLE. With the bundle enabled the
// document at SECRET_BUNDLE_KEY in the secrets bucket is the only source.
func Load(ctx context.Context, log *logger.Logger, blobs gcp.BlobStore) (Provider, error) {
	if !envutil.GetEnvAsBool("USE_SECRET_BUNDLE", false, log) {
		log.Info("Using environment variables for secrets")
		return Env(), nil
	}
	if blobs == nil {
		return nil, ads.NewError(ads.CodeConfig, "secrets.Load", "secret bundle enabled without object storage", ads.ErrMissingConfig)
	}
	key := envutil.GetEnv("SECRET_BUNDLE_KEY", DefaultBundleKey, log)
	rc, err := blobs.Download(ctx, gcp.BucketSecrets, key)
	if err != nil {
		return nil, ads.NewError(ads.CodeConfig, "secrets.Load", fmt.Sprintf("download secret bundle %s", key), err)
	}
	defer rc.Close()
	bundle, err := DecodeBundle(rc)
	if err != nil {
		return nil, err
	}
	log.Info("Using secret bundle", "key", key, "entries", len(bundle))
	return bundle, nil
}
