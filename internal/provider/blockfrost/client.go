// Package blockfrost implements chain data access through the Blockfrost
// API. It is the default domain.DataProvider for mainnet use.
package blockfrost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/cardexlab/cardex/internal/domain"
)

// DefaultBaseURL is the mainnet API root.
const DefaultBaseURL = "https://cardano-mainnet.blockfrost.io/api/v0"

const pageSize = 100

// Client talks to Blockfrost. Safe for concurrent use.
type Client struct {
	baseURL    string
	projectID  string
	httpClient *http.Client
}

// NewClient creates a Blockfrost client. baseURL may be empty for mainnet.
func NewClient(baseURL, projectID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type utxoDTO struct {
	TxHash      string      `json:"tx_hash"`
	OutputIndex int         `json:"output_index"`
	Amount      []amountDTO `json:"amount"`
	DataHash    string      `json:"data_hash"`
	InlineDatum string      `json:"inline_datum"`
}

type amountDTO struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// UTxOs pages through the unspent outputs at address.
func (c *Client) UTxOs(ctx context.Context, address string) ([]domain.UTxO, error) {
	var utxos []domain.UTxO
	for page := 1; ; page++ {
		path := fmt.Sprintf("/addresses/%s/utxos?count=%d&page=%d",
			url.PathEscape(address), pageSize, page)
		body, err := c.doGet(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("blockfrost: utxos page %d: %w", page, err)
		}

		var dtos []utxoDTO
		if err := json.Unmarshal(body, &dtos); err != nil {
			return nil, fmt.Errorf("blockfrost: decode utxos: %w", err)
		}
		for _, dto := range dtos {
			utxo, err := utxoFromDTO(dto, address)
			if err != nil {
				return nil, err
			}
			utxos = append(utxos, utxo)
		}
		if len(dtos) < pageSize {
			return utxos, nil
		}
	}
}

func utxoFromDTO(dto utxoDTO, address string) (domain.UTxO, error) {
	balances := make([]domain.AssetBalance, 0, len(dto.Amount))
	for _, a := range dto.Amount {
		quantity, ok := new(big.Int).SetString(a.Quantity, 10)
		if !ok {
			return domain.UTxO{}, fmt.Errorf("blockfrost: quantity %q: %w", a.Quantity, domain.ErrMalformedRecord)
		}
		balances = append(balances, domain.AssetBalance{
			Token:    unitToToken(a.Unit),
			Quantity: quantity,
		})
	}
	return domain.UTxO{
		TxHash:        dto.TxHash,
		OutputIndex:   dto.OutputIndex,
		Address:       address,
		DatumHash:     dto.DataHash,
		AssetBalances: balances,
	}, nil
}

// unitToToken splits a Blockfrost unit into policy id (56 hex chars) and
// asset name.
func unitToToken(unit string) domain.Token {
	if unit == domain.LovelaceUnit || len(unit) < 56 {
		return domain.Lovelace
	}
	return domain.NewAsset(unit[:56], unit[56:], 0)
}

// DatumValue resolves a datum hash to its raw CBOR bytes.
func (c *Client) DatumValue(ctx context.Context, datumHash string) ([]byte, error) {
	body, err := c.doGet(ctx, "/scripts/datum/"+url.PathEscape(datumHash)+"/cbor")
	if err != nil {
		return nil, fmt.Errorf("blockfrost: datum %s: %w", datumHash, err)
	}

	var resp struct {
		Cbor string `json:"cbor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("blockfrost: decode datum response: %w", err)
	}
	raw, err := hex.DecodeString(resp.Cbor)
	if err != nil {
		return nil, fmt.Errorf("blockfrost: datum %s not hex: %w", datumHash, domain.ErrMalformedRecord)
	}
	return raw, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.projectID != "" {
		req.Header.Set("project_id", c.projectID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return body, nil
}

var _ domain.DataProvider = (*Client)(nil)
