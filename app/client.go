package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://www.virustotal.com/api/v3"

var (
	ErrEmptyURL             = errors.New("empty URL")
	ErrInvalidURL           = errors.New("not a valid URL")
	ErrEmptyAnalysisID      = errors.New("empty analysis id")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrMalformedResponse    = errors.New("malformed response")
)

type limiter interface {
	Wait(context.Context) error
}

type Client struct {
	BaseURL    string
	// Headers are added to every request. They cannot replace the API key.
	Headers    Headers
	apiKey     string
	httpClient *http.Client
	limiter    limiter
	timeout    time.Duration
}

// NewClient returns a client for the scanning API. rateLimit is the number
// of requests per second shared by all calls of this client, 0 disables it.
func NewClient(baseURL, apiKey string, rateLimit float64, timeout time.Duration) *Client {
	limit := rate.Inf
	if rateLimit > 0 {
		limit = rate.Limit(rateLimit)
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    timeout,
	}
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SubmitURL(ctx context.Context, rawURL string) (*CanonizationResult, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	form := url.Values{}
	form.Set("url", rawURL)

	body, err := c.call(ctx, http.MethodPost, c.BaseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("SubmitURL: %w", err)
	}

	var result CanonizationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("SubmitURL: %w: %v", ErrMalformedResponse, err)
	}

	if result.Data.ID == "" {
		return nil, fmt.Errorf("SubmitURL: %w: missing data.id", ErrMalformedResponse)
	}

	return &result, nil
}

func (c *Client) GetAnalysis(ctx context.Context, id string) (*AnalysisResult, error) {
	if id == "" {
		return nil, ErrEmptyAnalysisID
	}

	body, err := c.call(ctx, http.MethodGet, c.BaseURL+"/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("GetAnalysis %s: %w", id, err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetAnalysis %s: %w: %v", id, ErrMalformedResponse, err)
	}

	if result.Data.Attributes.Status == "" {
		return nil, fmt.Errorf("GetAnalysis %s: %w: missing status", id, ErrMalformedResponse)
	}
	result.Raw = body

	return &result, nil
}

func (c *Client) call(ctx context.Context, httpMethod, target string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("error while rate limiting: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.buildRequest(ctx, httpMethod, target, body)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: error making http request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, c.statusCodeError(res.StatusCode, payload)
	}

	return payload, nil
}

func (c *Client) statusCodeError(statusCode int, payload []byte) error {
	var apiErr apiError
	if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Code != "" {
		return fmt.Errorf(
			"%w: got %d: %s: %s",
			ErrUnexpectedStatusCode,
			statusCode,
			apiErr.Error.Code,
			apiErr.Error.Message,
		)
	}

	return fmt.Errorf("%w: got %d", ErrUnexpectedStatusCode, statusCode)
}

func (c *Client) buildRequest(ctx context.Context, httpMethod, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, httpMethod, target, body)
	if err != nil {
		return nil, fmt.Errorf("client: could not create request: %w", err)
	}

	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return req, nil
}
