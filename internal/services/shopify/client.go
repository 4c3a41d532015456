package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ffbridge/internal/logger"
)

const DefaultAPIVersion = "2025-07"

type Client struct {
	shopDomain  string
	accessToken string
	endpoint    string
	httpClient  *http.Client
	logger      *logger.Logger
}

type ClientOption func(*Client)

// WithEndpoint overrides the GraphQL endpoint, mostly useful against a test server.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(shopDomain, accessToken, apiVersion string, logger *logger.Logger, opts ...ClientOption) *Client {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	c := &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     []GraphQLError  `json:"errors,omitempty"`
	Extensions *Extensions     `json:"extensions,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

// Extensions carries the query cost block Shopify attaches to every response.
type Extensions struct {
	Cost struct {
		RequestedQueryCost float64 `json:"requestedQueryCost"`
		ThrottleStatus     struct {
			MaximumAvailable   float64 `json:"maximumAvailable"`
			CurrentlyAvailable float64 `json:"currentlyAvailable"`
			RestoreRate        float64 `json:"restoreRate"`
		} `json:"throttleStatus"`
	} `json:"cost"`
}

// Query executes a GraphQL query and decodes the data member into out.
func (c *Client) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) (*Extensions, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Add authentication header
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		messages := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			messages = append(messages, e.Message)
		}
		c.logger.Error("GraphQL errors for %s: %s", c.shopDomain, messages[0])
		return gqlResp.Extensions, fmt.Errorf("graphql errors: %s", strings.Join(messages, "; "))
	}

	if out != nil && len(gqlResp.Data) > 0 && string(gqlResp.Data) != "null" {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return gqlResp.Extensions, fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return gqlResp.Extensions, nil
}

// ThrottleDelay returns how long to pause before the next query so the cost
// bucket can refill. Zero means no pause is needed.
func (e *Extensions) ThrottleDelay() time.Duration {
	if e == nil {
		return 0
	}
	status := e.Cost.ThrottleStatus
	if status.RestoreRate <= 0 || status.CurrentlyAvailable >= 20 {
		return 0
	}
	const pointsNeeded = 50.0
	return time.Duration(pointsNeeded / status.RestoreRate * float64(time.Second))
}
