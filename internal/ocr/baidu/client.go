// Package baidu implements port.TextExtractor against the Baidu
// general_basic OCR API. Access tokens come from the OAuth
// client-credentials exchange and are cached until shortly before expiry.
package baidu

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"smartledger/internal/config"
)

const (
	tokenURL = "https://aip.baidubce.com/oauth/2.0/token"
	ocrURL   = "https://aip.baidubce.com/rest/2.0/ocr/v1/general_basic"

	// Refresh the cached token this long before Baidu says it expires.
	expiryMargin = 60 * time.Second
)

// Client is an OCR text extractor backed by Baidu's general_basic endpoint.
type Client struct {
	apiKey    string
	secretKey string
	tokenURL  string
	ocrURL    string
	client    *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient creates an OCR client from config.
func NewClient(cfg *config.OCRConfig) *Client {
	return newClient(cfg, tokenURL, ocrURL)
}

// NewClientWithEndpoints creates a client pointing at custom endpoints (for testing).
func NewClientWithEndpoints(cfg *config.OCRConfig, tokenEndpoint, ocrEndpoint string) *Client {
	return newClient(cfg, tokenEndpoint, ocrEndpoint)
}

func newClient(cfg *config.OCRConfig, tokenEndpoint, ocrEndpoint string) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		tokenURL:  tokenEndpoint,
		ocrURL:    ocrEndpoint,
		client:    &http.Client{Timeout: timeout},
	}
}

// ExtractText runs OCR over the image and returns the recognized lines joined
// with newlines.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	token, err := c.accessTokenFor(ctx)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(image))

	endpoint := c.ocrURL + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling baidu ocr: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("baidu ocr error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		WordsResult []struct {
			Words string `json:"words"`
		} `json:"words_result"`
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling ocr response: %w", err)
	}
	if parsed.ErrorCode != 0 {
		return "", fmt.Errorf("baidu ocr error %d: %s", parsed.ErrorCode, parsed.ErrorMsg)
	}

	lines := make([]string, 0, len(parsed.WordsResult))
	for _, w := range parsed.WordsResult {
		lines = append(lines, w.Words)
	}
	return strings.Join(lines, "\n"), nil
}

// accessTokenFor returns the cached access token, fetching a fresh one via
// the client-credentials exchange when missing or close to expiry.
func (c *Client) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.apiKey == "" || c.secretKey == "" {
		return "", fmt.Errorf("baidu ocr credentials are not configured")
	}

	endpoint := fmt.Sprintf("%s?grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.tokenURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.secretKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching baidu access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("baidu token error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("baidu token response missing access_token: %s", string(body))
	}

	c.accessToken = parsed.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(parsed.ExpiresIn)*time.Second - expiryMargin)
	return c.accessToken, nil
}
