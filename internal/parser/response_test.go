package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartledger/internal/parser"
)

func TestExtractChatContent_Success(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"{\"category\":\"餐饮\"}"},"finish_reason":"stop"}]}`)

	content, err := parser.ExtractChatContent(body)

	assert.NoError(t, err)
	assert.Equal(t, `{"category":"餐饮"}`, content)
}

func TestExtractChatContent_NoChoices(t *testing.T) {
	_, err := parser.ExtractChatContent([]byte(`{"choices":[]}`))
	assert.ErrorContains(t, err, "no choices")
}

func TestExtractChatContent_Truncated(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"{\"cat"},"finish_reason":"length"}]}`)

	_, err := parser.ExtractChatContent(body)
	assert.ErrorContains(t, err, "finish_reason: length")
}

func TestExtractChatContent_NotJSON(t *testing.T) {
	_, err := parser.ExtractChatContent([]byte("<html>502</html>"))
	assert.Error(t, err)
}

func TestDecodeFields_WellFormed(t *testing.T) {
	content := `{"category":"交通","amount":"30.00","date":"2026-03-10","description":"打车","nw_type":"基础支出"}`

	result := parser.DecodeFields(content, "qwen-turbo")

	assert.Equal(t, "交通", result.Fields.Category)
	assert.Equal(t, "30.00", result.Fields.Amount)
	assert.Equal(t, "2026-03-10", result.Fields.Date)
	assert.Equal(t, "打车", result.Fields.Description)
	assert.Equal(t, "基础支出", result.Fields.NWType)
	assert.Equal(t, "qwen-turbo", result.ModelUsed)
	assert.Empty(t, result.Raw)
}

func TestDecodeFields_NumericAmountCoerced(t *testing.T) {
	result := parser.DecodeFields(`{"category":"餐饮","amount":32.5}`, "qwen3-vl-plus")

	assert.Equal(t, "32.5", result.Fields.Amount)
}

func TestDecodeFields_MalformedKeepsRaw(t *testing.T) {
	content := "抱歉，我无法识别这张图片中的账单信息。"

	result := parser.DecodeFields(content, "qwen3-vl-plus")

	assert.Equal(t, content, result.Raw)
	assert.Empty(t, result.Fields.Category)
	assert.Empty(t, result.Fields.Amount)
}

func TestDecodeFields_MissingKeysLeftEmpty(t *testing.T) {
	result := parser.DecodeFields(`{"amount":"12.00"}`, "qwen-turbo")

	assert.Equal(t, "12.00", result.Fields.Amount)
	assert.Empty(t, result.Fields.Category)
	assert.Empty(t, result.Raw)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, parser.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
}

func TestNewRateLimitError_DefaultsTo60s(t *testing.T) {
	err := parser.NewRateLimitError("qwen-vl", assert.AnError, 0)
	assert.Equal(t, "qwen-vl", err.Provider)
	assert.Equal(t, int64(60), int64(err.RetryAfter.Seconds()))
	assert.ErrorIs(t, err, assert.AnError)
}
