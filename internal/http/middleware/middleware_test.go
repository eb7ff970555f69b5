package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/observability"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/ctxutil"
)

func TestInvocationEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Invocation())
	var seen ctxutil.Invocation
	var ok bool
	r.GET("/api/brands/:id", func(c *gin.Context) {
		seen, ok = ctxutil.InvocationFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/brands/7", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "req-1" {
		t.Fatalf("request id header: want=req-1 got=%q", got)
	}
	if !ok || seen.RequestID != "req-1" || len(seen.TraceID) != 32 || seen.Origin != ctxutil.OriginHTTP {
		t.Fatalf("invocation: got=%+v ok=%v", seen, ok)
	}
	if seen.Operation != "GET /api/brands/:id" {
		t.Fatalf("operation: want=%q got=%q", "GET /api/brands/:id", seen.Operation)
	}
}

func TestInvocationReplacesUnusableRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Invocation())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, bad := range []string{"has space", strings.Repeat("a", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderRequestID, bad)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if got := rec.Header().Get(HeaderRequestID); got == bad || got == "" {
			t.Fatalf("request id %q: want a generated id got=%q", bad, got)
		}
	}
}

func TestMetricsLabelsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/brands/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/api/brands/1", "/api/brands/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	var sb strings.Builder
	m.WritePrometheus(&sb)
	out := sb.String()
	for _, want := range []string{
		`route="/api/brands/:id"`,
		`route="unmatched"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/api/brands/1") {
		t.Fatalf("raw path leaked into labels:\n%s", out)
	}
}
