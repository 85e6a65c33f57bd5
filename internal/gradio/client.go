// Package gradio is a minimal client for apps served by Gradio, including
// Hugging Face Spaces. It covers connecting to an app and calling its named
// endpoints through the queue-backed /call API.
package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHubURL is the Hugging Face Hub used to resolve Space identifiers.
const DefaultHubURL = "https://huggingface.co"

// Client talks to one Gradio app. All calls made through a Client share a
// session hash, so server-side gr.State survives between calls.
type Client struct {
	root        string
	apiPrefix   string
	sessionHash string
	endpoints   map[string]endpointInfo

	httpClient *http.Client
	token      string
	hubURL     string
	logger     *zap.Logger
}

// Option configures Connect.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. No timeout is applied by default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends a Hugging Face token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHubURL overrides the Hub used to resolve Space identifiers.
func WithHubURL(hub string) Option {
	return func(c *Client) { c.hubURL = strings.TrimRight(hub, "/") }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type endpointInfo struct {
	Parameters []struct {
		Name string `json:"parameter_name"`
	} `json:"parameters"`
}

// Connect resolves space, fetches the app config and endpoint signatures and
// returns a ready Client. space is either an app URL or a Space id such as
// "owner/name".
func Connect(ctx context.Context, space string, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:  &http.Client{},
		hubURL:      DefaultHubURL,
		logger:      zap.NewNop(),
		sessionHash: strings.ReplaceAll(uuid.NewString(), "-", "")[:11],
	}
	for _, opt := range opts {
		opt(c)
	}

	root, err := c.resolveRoot(ctx, space)
	if err != nil {
		return nil, err
	}
	c.root = root

	var cfg struct {
		APIPrefix string `json:"api_prefix"`
		Version   string `json:"version"`
	}
	if err := c.getJSON(ctx, c.root+"/config", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}
	c.apiPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	if c.apiPrefix == "/" {
		c.apiPrefix = ""
	}

	var info struct {
		NamedEndpoints map[string]endpointInfo `json:"named_endpoints"`
	}
	if err := c.getJSON(ctx, c.root+c.apiPrefix+"/info", &info); err != nil {
		return nil, fmt.Errorf("failed to load API info: %w", err)
	}
	c.endpoints = info.NamedEndpoints

	c.logger.Info("Connected to Gradio app",
		zap.String("space", space),
		zap.String("root", c.root),
		zap.String("gradio_version", cfg.Version),
		zap.Int("endpoints", len(c.endpoints)))
	return c, nil
}

// Root returns the app base URL.
func (c *Client) Root() string { return c.root }

// SessionHash returns the session identifier sent with every call.
func (c *Client) SessionHash() string { return c.sessionHash }

func (c *Client) resolveRoot(ctx context.Context, space string) (string, error) {
	space = strings.TrimSpace(space)
	if space == "" {
		return "", fmt.Errorf("space is required")
	}
	if strings.HasPrefix(space, "http://") || strings.HasPrefix(space, "https://") {
		return strings.TrimRight(space, "/"), nil
	}
	if strings.Count(space, "/") != 1 {
		return "", fmt.Errorf("invalid space id: %s (expected owner/name)", space)
	}

	var host struct {
		Subdomain string `json:"subdomain"`
		Host      string `json:"host"`
	}
	if err := c.getJSON(ctx, c.hubURL+"/api/spaces/"+space+"/host", &host); err != nil {
		return "", fmt.Errorf("failed to resolve space %s: %w", space, err)
	}
	if host.Host == "" {
		return "", fmt.Errorf("space %s has no host", space)
	}
	return strings.TrimRight(host.Host, "/"), nil
}

// Predict calls endpoint (e.g. "/on_generate") with named params and waits
// for the result.
func (c *Client) Predict(ctx context.Context, endpoint string, params map[string]any) (*Response, error) {
	data, err := c.positional(endpoint, params)
	if err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(endpoint, "/")
	callURL := c.root + c.apiPrefix + "/call/" + url.PathEscape(name)

	body, err := json.Marshal(map[string]any{
		"data":         data,
		"session_hash": c.sessionHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}

	var queued struct {
		EventID string `json:"event_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return nil, fmt.Errorf("failed to decode %s call response: %w", endpoint, err)
	}
	if queued.EventID == "" {
		return nil, fmt.Errorf("call to %s returned no event id", endpoint)
	}

	c.logger.Debug("Gradio call queued", zap.String("endpoint", endpoint), zap.String("event_id", queued.EventID))

	out, err := c.await(ctx, endpoint, callURL+"/"+url.PathEscape(queued.EventID))
	if err != nil {
		return nil, err
	}
	return &Response{Endpoint: endpoint, EventID: queued.EventID, Data: out}, nil
}

func (c *Client) positional(endpoint string, params map[string]any) ([]any, error) {
	info, ok := c.endpoints[endpoint]
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %s", endpoint)
	}
	data := make([]any, len(info.Parameters))
	used := 0
	for i, p := range info.Parameters {
		if v, ok := params[p.Name]; ok {
			data[i] = v
			used++
		}
	}
	if used != len(params) {
		return nil, fmt.Errorf("endpoint %s does not accept all of the given parameters", endpoint)
	}
	return data, nil
}

func (c *Client) await(ctx context.Context, endpoint, streamURL string) ([]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s result: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to read %s result: %w", endpoint, err)
	}

	return readEvents(resp.Body, endpoint)
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
