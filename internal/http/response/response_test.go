package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/ctxutil"
)

func TestRespondErrCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		ctx := ctxutil.WithInvocation(c.Request.Context(), ctxutil.Invocation{Origin: ctxutil.OriginHTTP, RequestID: "req-9"})
		c.Request = c.Request.WithContext(ctx)
		RespondErr(c, ads.NewError(ads.CodeNotFound, "test", "brand 1", ads.ErrNotFound))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: want=%d got=%d", http.StatusNotFound, rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.RequestID != "req-9" || env.Error.Code == "" {
		t.Fatalf("envelope: got=%+v", env.Error)
	}
}
