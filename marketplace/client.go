package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	collectionQuery = `query Collection($address: String!) {
		collection(address: $address) {
			id name description media { type url } floorPrice
			creator { id address }
			tokenCounts { listed total }
		}
	}`

	tokenQuery = `query Token($collectionAddress: String!, $id: String!) {
		token(collectionAddr: $collectionAddress, tokenId: $id) {
			id name owner price rarityOrder media { type url }
		}
	}`
)

// Client reads collections and listings from the marketplace GraphQL indexer.
type Client struct {
	graphqlURL string
	client     *http.Client
}

func NewClient(graphqlURL string) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		client:     &http.Client{Timeout: 25 * time.Second},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

func (c *Client) Collection(ctx context.Context, address string) (*Collection, error) {
	var rsp struct {
		Data struct {
			Collection *Collection `json:"collection"`
		} `json:"data"`
	}

	req := graphqlRequest{
		Query:     collectionQuery,
		Variables: map[string]any{"address": address},
	}
	if err := c.query(ctx, req, &rsp); err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	if rsp.Data.Collection == nil {
		return nil, fmt.Errorf("collection %s not found", address)
	}
	return rsp.Data.Collection, nil
}

func (c *Client) Token(ctx context.Context, collectionAddr, tokenID string) (*Token, error) {
	var rsp struct {
		Data struct {
			Token *Token `json:"token"`
		} `json:"data"`
	}

	req := graphqlRequest{
		Query: tokenQuery,
		Variables: map[string]any{
			"collectionAddress": collectionAddr,
			"id":                tokenID,
		},
	}
	if err := c.query(ctx, req, &rsp); err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if rsp.Data.Token == nil {
		return nil, fmt.Errorf("token %s/%s not found", collectionAddr, tokenID)
	}
	return rsp.Data.Token, nil
}

func (c *Client) query(ctx context.Context, req graphqlRequest, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to query indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to query indexer: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
