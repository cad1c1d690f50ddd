package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"smartledger/internal/handler"
	"smartledger/internal/router"
	"smartledger/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testEngine() *gin.Engine {
	authH := handler.NewAuthHandler(new(mocks.MockAuthService))
	billH := handler.NewBillHandler(new(mocks.MockBillService), new(mocks.MockAuthService))
	healthH := handler.NewHealthHandler(nil)
	return router.Setup(authH, billH, healthH, nil)
}

func TestRouter_Ping(t *testing.T) {
	r := testEngine()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouter_UnknownPathGets444(t *testing.T) {
	r := testEngine()

	for _, path := range []string{"/", "/admin", "/wp-login.php", "/api/v1/bills"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, 444, w.Code, "path %s", path)
		assert.Empty(t, w.Body.String(), "path %s", path)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := testEngine()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
