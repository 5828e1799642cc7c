package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	routePath = "/v2/fungible/route"
	msgsPath  = "/v2/fungible/msgs"
)

// Client talks to the external swap-routing service: Route returns a quote
// for a given input amount, Msgs decomposes a quoted route into an ordered
// plan of chain-native messages.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 25 * time.Second},
	}
}

func (c *Client) Route(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	rsp := new(RouteResponse)
	if err := c.post(ctx, routePath, req, rsp); err != nil {
		return nil, fmt.Errorf("failed to get swap route: %w", err)
	}
	return rsp, nil
}

func (c *Client) Msgs(ctx context.Context, req MsgsRequest) (*MsgsResponse, error) {
	rsp := new(MsgsResponse)
	if err := c.post(ctx, msgsPath, req, rsp); err != nil {
		return nil, fmt.Errorf("failed to get swap messages: %w", err)
	}
	return rsp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, string(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
