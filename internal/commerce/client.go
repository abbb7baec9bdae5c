// Package commerce is the gateway to the upstream commerce backend's
// storefront GraphQL API. It owns the wire protocol for the cart operations
// and the read-only catalog queries; all pricing, inventory and cart
// mutation logic lives upstream.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// CacheHint is a freshness hint passed through to the transport; it never
// affects correctness. Cart operations always use CacheNoStore.
type CacheHint string

const (
	CacheDefault CacheHint = ""
	CacheNoStore CacheHint = "no-store"
)

const tokenHeader = "X-Shopify-Storefront-Access-Token"

// Client issues GraphQL operations against the commerce backend, attaching
// the static storefront credential. It is stateless across calls and safe
// for concurrent use.
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
	logger   *log.Logger
}

func New(storeDomain, token, apiVersion string, logger *log.Logger) *Client {
	return &Client{
		endpoint: fmt.Sprintf("https://%s/api/%s/graphql.json", storeDomain, apiVersion),
		token:    token,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// Execute posts one GraphQL operation and returns the raw data payload.
// Non-2xx responses surface as *TransportError. A GraphQL-protocol errors
// array is logged and the data, which may be partial, is still returned;
// callers must treat expected fields as possibly absent.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, hint CacheHint) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)
	if hint == CacheNoStore {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Status: resp.StatusCode, StatusText: resp.Status}
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Errors) > 0 && c.logger != nil {
		for _, gqlErr := range decoded.Errors {
			c.logger.Printf("commerce graphql error: %s", gqlErr.Message)
		}
	}
	return decoded.Data, nil
}

// Ping runs a trivial query to verify the endpoint and credential.
func (c *Client) Ping(ctx context.Context) error {
	data, err := c.Execute(ctx, shopQuery, nil, CacheNoStore)
	if err != nil {
		return err
	}
	var out struct {
		Shop *struct {
			Name string `json:"name"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode shop: %w", err)
	}
	if out.Shop == nil {
		return fmt.Errorf("shop query returned no data")
	}
	return nil
}
