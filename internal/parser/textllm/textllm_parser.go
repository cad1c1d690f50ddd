// Package textllm implements the text-direct parser variant: a natural
// language bill description is fed to a text-capable model with the shared
// constrained prompt.
package textllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartledger/internal/config"
	"smartledger/internal/domain"
	"smartledger/internal/parser"
	"smartledger/internal/port"
)

const defaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Parser implements port.BillParser against a text-capable model.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates a text parser from a provider config.
func NewParser(cfg *config.ParserProviderConfig) *Parser {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return newParser(cfg, strings.TrimSuffix(base, "/")+"/chat/completions")
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.ParserProviderConfig, endpoint string) *Parser {
	model := cfg.Model
	if model == "" {
		model = "qwen-turbo"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Parser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("text model api key is not configured")
	}
	if input.Text == "" {
		return nil, fmt.Errorf("text input is empty")
	}

	prompt := parser.BuildBillPrompt(time.Now().Format(domain.DateLayout))

	reqBody := map[string]interface{}{
		"model":           p.model,
		"response_format": map[string]interface{}{"type": "json_object"},
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt},
			{"role": "user", "content": "解析这条账单描述：" + input.Text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling text model API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("text model API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parser.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, parser.NewRateLimitError("qwen-text", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	content, err := parser.ExtractChatContent(respBody)
	if err != nil {
		return nil, err
	}
	return parser.DecodeFields(content, p.model), nil
}
