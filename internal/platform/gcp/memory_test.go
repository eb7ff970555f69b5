package gcp

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(StorageConfig{ReportBucket: "rep"})

	if err := m.Upload(ctx, BucketReports, "insights_stats.html", strings.NewReader("<p>hi</p>")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	rc, err := m.Download(ctx, BucketReports, "insights_stats.html")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<p>hi</p>" {
		t.Fatalf("body: got=%q", body)
	}
	attrs, err := m.Attrs(ctx, BucketReports, "insights_stats.html")
	if err != nil || attrs.Size != 9 || !strings.HasPrefix(attrs.ContentType, "text/html") {
		t.Fatalf("Attrs: got=%+v err=%v", attrs, err)
	}

	if _, err := m.Download(ctx, BucketReports, "missing"); !errors.Is(err, ads.ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound got %v", err)
	}
	if err := m.Upload(ctx, BucketMedia, "k", strings.NewReader("x")); !errors.Is(err, ads.ErrMissingConfig) {
		t.Fatalf("unconfigured bucket: want ErrMissingConfig got %v", err)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "rep/insights_stats.html" {
		t.Fatalf("Keys: got=%v", keys)
	}
}
