package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"geoatlas/pkg/utils/contextkey"
	"geoatlas/pkg/utils/logger"

	"github.com/gin-gonic/gin"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	r := gin.New()
	r.Use(TraceContextMiddleware(), RecoveryMiddleware(log), AccessLogMiddleware(log))
	return r
}

func TestTraceContextGeneratesAndPropagatesIDs(t *testing.T) {
	r := newTestEngine()
	var seen interface{}
	r.GET("/ping", func(c *gin.Context) {
		seen = c.Request.Context().Value(contextkey.TraceID)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(traceIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "abc" {
		t.Fatalf("expected trace id abc in context, got %v", seen)
	}
	if w.Header().Get(traceIDHeader) != "abc" {
		t.Fatalf("expected trace id echoed")
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	r := newTestEngine()
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
