package qwenvl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartledger/internal/config"
	"smartledger/internal/parser"
	"smartledger/internal/parser/qwenvl"
	"smartledger/internal/port"
)

func newTestParser(serverURL string) *qwenvl.Parser {
	cfg := &config.ParserProviderConfig{
		APIKey:      "test-key",
		Model:       "qwen3-vl-plus",
		TimeoutSecs: 30,
	}
	return qwenvl.NewParserWithEndpoint(cfg, serverURL)
}

func chatSuccessResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestQwenVLParser_Parse_Success(t *testing.T) {
	llmJSON := `{"category":"餐饮","amount":"32.00","date":"2026-03-10","description":"午餐","nw_type":"基础支出"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "qwen3-vl-plus", reqBody["model"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		require.Len(t, content, 2)

		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image_url", imgBlock["type"])
		url := imgBlock["image_url"].(map[string]interface{})["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"].(string), "category")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatSuccessResponse(llmJSON))
	}))
	defer server.Close()

	p := newTestParser(server.URL)
	result, err := p.Parse(context.Background(), port.ParseInput{
		ImageBytes:  []byte{0x89, 0x50, 0x4e, 0x47},
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "餐饮", result.Fields.Category)
	assert.Equal(t, "32.00", result.Fields.Amount)
	assert.Equal(t, "qwen3-vl-plus", result.ModelUsed)
}

func TestQwenVLParser_Parse_MalformedModelOutputKeepsRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatSuccessResponse("这不是JSON"))
	}))
	defer server.Close()

	p := newTestParser(server.URL)
	result, err := p.Parse(context.Background(), port.ParseInput{ImageBytes: []byte{1}})

	require.NoError(t, err)
	assert.Equal(t, "这不是JSON", result.Raw)
	assert.Empty(t, result.Fields.Amount)
}

func TestQwenVLParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestParser(server.URL)
	_, err := p.Parse(context.Background(), port.ParseInput{ImageBytes: []byte{1}})

	var rle *parser.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "qwen-vl", rle.Provider)
	assert.Equal(t, int64(30), int64(rle.RetryAfter.Seconds()))
}

func TestQwenVLParser_Parse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestParser(server.URL)
	_, err := p.Parse(context.Background(), port.ParseInput{ImageBytes: []byte{1}})

	assert.ErrorContains(t, err, "status 500")
}

func TestQwenVLParser_Parse_MissingAPIKey(t *testing.T) {
	p := qwenvl.NewParserWithEndpoint(&config.ParserProviderConfig{}, "http://unused")

	_, err := p.Parse(context.Background(), port.ParseInput{ImageBytes: []byte{1}})
	assert.ErrorContains(t, err, "api key")
}
