package saturn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the REST client for the SaturnSwap backend, which lists AMM
// pools and builds unsigned orders server-side.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. baseURL is the API root, e.g.
// "https://api.saturnswap.io/v1".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AmmPoolDTO is the backend's pool listing shape. AssetA/AssetB are
// "lovelace" or "policyId.assetNameHex" unit strings.
type AmmPoolDTO struct {
	ID         string  `json:"id"`
	PoolID     string  `json:"poolId"`
	AssetA     string  `json:"assetA"`
	AssetB     string  `json:"assetB"`
	ReserveA   string  `json:"reserveA"`
	ReserveB   string  `json:"reserveB"`
	FeePercent float64 `json:"feePercent"`
}

// GetAmmPools returns the backend's AMM pool listing.
func (c *Client) GetAmmPools(ctx context.Context) ([]AmmPoolDTO, error) {
	body, err := c.doGet(ctx, "/amm/pools")
	if err != nil {
		return nil, fmt.Errorf("saturn: get amm pools: %w", err)
	}

	var pools []AmmPoolDTO
	if err := json.Unmarshal(body, &pools); err != nil {
		return nil, fmt.Errorf("saturn: decode amm pools: %w", err)
	}
	return pools, nil
}

// BuildOrderRequest asks the backend to assemble an unsigned AMM order.
// Exactly one of SwapInAmount / SwapOutAmount is set, matching Direction.
type BuildOrderRequest struct {
	PoolID         string `json:"poolId"`
	Direction      string `json:"direction"` // "in" or "out"
	SwapInAmount   int64  `json:"swapInAmount,omitempty"`
	SwapOutAmount  int64  `json:"swapOutAmount,omitempty"`
	SlippageBps    int64  `json:"slippageBps,omitempty"`
	ChangeAddress  string `json:"changeAddress"`
	PartnerAddress string `json:"partnerAddress,omitempty"`
}

// BuildOrderResponse carries the unsigned transaction the caller signs and
// submits locally.
type BuildOrderResponse struct {
	UnsignedCborHex string `json:"unsignedCborHex"`
}

// BuildOrder requests an unsigned AMM order from the backend.
func (c *Client) BuildOrder(ctx context.Context, req BuildOrderRequest) (BuildOrderResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return BuildOrderResponse{}, fmt.Errorf("saturn: encode build order: %w", err)
	}

	body, err := c.doPost(ctx, "/amm/orders/build", payload)
	if err != nil {
		return BuildOrderResponse{}, fmt.Errorf("saturn: build order: %w", err)
	}

	var resp BuildOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return BuildOrderResponse{}, fmt.Errorf("saturn: decode build order: %w", err)
	}
	if resp.UnsignedCborHex == "" {
		return BuildOrderResponse{}, fmt.Errorf("saturn: build order returned no unsigned cbor")
	}
	return resp, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
