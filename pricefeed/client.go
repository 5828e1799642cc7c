package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches current USD prices by coingecko id from a llama.fi style
// price API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type coin struct {
	Price      decimal.Decimal `json:"price"`
	Symbol     string          `json:"symbol"`
	Timestamp  int64           `json:"timestamp"`
	Confidence float64         `json:"confidence"`
}

type coinsResponse struct {
	Coins map[string]coin `json:"coins"`
}

func (c *Client) Price(ctx context.Context, coinGeckoID string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/prices/current/coingecko:%s", c.baseURL, coinGeckoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("failed to get price: %s", resp.Status)
	}

	var rsp coinsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rsp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode response: %w", err)
	}

	found, ok := rsp.Coins["coingecko:"+coinGeckoID]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for coingecko:%s", coinGeckoID)
	}
	return found.Price, nil
}
