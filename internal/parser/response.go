package parser

import (
	"encoding/json"
	"fmt"
	"strconv"

	"smartledger/internal/port"
)

// chatResponse models the OpenAI-compatible chat completions response shape
// shared by the DashScope vision and text endpoints.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ExtractChatContent pulls the assistant message out of a chat completions
// response body.
func ExtractChatContent(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length)")
	}
	return resp.Choices[0].Message.Content, nil
}

// DecodeFields parses the model's text into bill field candidates. Output that
// is not a well-formed JSON object is not an error here: the raw text is kept
// for diagnostics and the empty field set fails validation downstream. Models
// sometimes emit amount as a bare number, so values are coerced, not typed.
func DecodeFields(content, model string) *port.ParseResult {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return &port.ParseResult{Raw: content, ModelUsed: model}
	}
	return &port.ParseResult{
		Fields: port.BillFields{
			Category:    coerceString(obj["category"]),
			Amount:      coerceString(obj["amount"]),
			Date:        coerceString(obj["date"]),
			Description: coerceString(obj["description"]),
			NWType:      coerceString(obj["nw_type"]),
		},
		ModelUsed: model,
	}
}

func coerceString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
