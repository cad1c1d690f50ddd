package baidu_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartledger/internal/config"
	"smartledger/internal/ocr/baidu"
)

func testOCRConfig() *config.OCRConfig {
	return &config.OCRConfig{
		APIKey:      "test-api-key",
		SecretKey:   "test-secret-key",
		TimeoutSecs: 5,
	}
}

func tokenHandler(calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		q := r.URL.Query()
		if q.Get("grant_type") != "client_credentials" ||
			q.Get("client_id") != "test-api-key" ||
			q.Get("client_secret") != "test-secret-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-abc",
			"expires_in":   2592000,
		})
	}
}

func TestClient_ExtractText_JoinsLines(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	ocrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-abc", r.URL.Query().Get("access_token"))
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("image"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"words_result": []map[string]string{
				{"words": "星巴克"},
				{"words": "美式咖啡"},
				{"words": "32.00元"},
			},
		})
	}))
	defer ocrSrv.Close()

	c := baidu.NewClientWithEndpoints(testOCRConfig(), tokenSrv.URL, ocrSrv.URL)
	text, err := c.ExtractText(context.Background(), []byte{0xff, 0xd8})

	require.NoError(t, err)
	assert.Equal(t, "星巴克\n美式咖啡\n32.00元", text)
}

func TestClient_ExtractText_CachesToken(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	ocrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"words_result": []map[string]string{{"words": "x"}},
		})
	}))
	defer ocrSrv.Close()

	c := baidu.NewClientWithEndpoints(testOCRConfig(), tokenSrv.URL, ocrSrv.URL)
	for i := 0; i < 3; i++ {
		_, err := c.ExtractText(context.Background(), []byte{1})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestClient_ExtractText_APIError(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(tokenHandler(&tokenCalls))
	defer tokenSrv.Close()

	ocrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error_code": 17,
			"error_msg":  "Open api daily request limit reached",
		})
	}))
	defer ocrSrv.Close()

	c := baidu.NewClientWithEndpoints(testOCRConfig(), tokenSrv.URL, ocrSrv.URL)
	_, err := c.ExtractText(context.Background(), []byte{1})

	assert.ErrorContains(t, err, "error 17")
}

func TestClient_ExtractText_MissingCredentials(t *testing.T) {
	c := baidu.NewClientWithEndpoints(&config.OCRConfig{}, "http://unused", "http://unused")

	_, err := c.ExtractText(context.Background(), []byte{1})
	assert.ErrorContains(t, err, "credentials")
}
