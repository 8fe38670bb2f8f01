// Package memory is an in-process domain.DataProvider for tests and offline
// experiments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cardexlab/cardex/internal/domain"
)

// Provider serves UTxOs and datums from in-memory maps. Safe for concurrent
// use.
type Provider struct {
	mu     sync.RWMutex
	utxos  map[string][]domain.UTxO
	datums map[string][]byte
}

// NewProvider creates an empty provider.
func NewProvider() *Provider {
	return &Provider{
		utxos:  make(map[string][]domain.UTxO),
		datums: make(map[string][]byte),
	}
}

// AddUTxO registers an unspent output under its address.
func (p *Provider) AddUTxO(utxo domain.UTxO) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.utxos[utxo.Address] = append(p.utxos[utxo.Address], utxo)
}

// AddDatum registers raw datum CBOR under its hash.
func (p *Provider) AddDatum(hash string, raw []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.datums[hash] = raw
}

// UTxOs returns the outputs registered at address.
func (p *Provider) UTxOs(_ context.Context, address string) ([]domain.UTxO, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.UTxO, len(p.utxos[address]))
	copy(out, p.utxos[address])
	return out, nil
}

// DatumValue returns the raw CBOR registered under datumHash.
func (p *Provider) DatumValue(_ context.Context, datumHash string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	raw, ok := p.datums[datumHash]
	if !ok {
		return nil, fmt.Errorf("memory: datum %s: %w", datumHash, domain.ErrNotFound)
	}
	return raw, nil
}

var _ domain.DataProvider = (*Provider)(nil)
