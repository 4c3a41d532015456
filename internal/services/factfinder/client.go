package factfinder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiVersion = "v5"

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf("factfinder api error: status=%d message=%s", e.Status, msg)
}

func parseAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status, Body: string(body)}

	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		if v, ok := m["error"].(string); ok {
			out.Message = v
		}
		if v, ok := m["errorDescription"].(string); ok {
			out.Message = v
		}
	}
	return out
}

// RestClient talks to the FactFinder NG REST API with basic auth.
type RestClient struct {
	doer     Doer
	baseURL  string
	username string
	password string
}

func NewRestClient(serverURL, username, password string, timeout time.Duration) *RestClient {
	return &RestClient{
		doer:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(serverURL, "/"),
		username: username,
		password: password,
	}
}

// Running reports whether an import is in progress for the channel.
func (c *RestClient) Running(ctx context.Context, channel string) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, "/import/running", url.Values{"channel": {channel}})
	if err != nil {
		return false, err
	}

	var running bool
	if err := json.Unmarshal(body, &running); err != nil {
		return false, fmt.Errorf("failed to decode running flag: %w", err)
	}
	return running, nil
}

// Import triggers an import of the given type (search, recommendation, suggest).
func (c *RestClient) Import(ctx context.Context, channel, importType string) error {
	_, err := c.do(ctx, http.MethodPost, "/import/"+url.PathEscape(importType), url.Values{"channel": {channel}})
	return err
}

// Ping checks credentials and channel by asking for the record comparison.
func (c *RestClient) Ping(ctx context.Context, channel string) error {
	_, err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(channel)+"/compare", nil)
	return err
}

func (c *RestClient) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("factfinder server url is empty")
	}

	endpoint := c.baseURL + "/rest/" + apiVersion + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}
