package domain

import "context"

// DataProvider resolves addresses to unspent outputs and datum hashes to raw
// canonical CBOR bytes. Implementations are thin I/O wrappers (Blockfrost,
// in-memory fixtures); the engine never fetches data itself.
type DataProvider interface {
	UTxOs(ctx context.Context, address string) ([]UTxO, error)
	DatumValue(ctx context.Context, datumHash string) ([]byte, error)
}

// Transaction is a wallet-side transaction under construction.
type Transaction interface {
	PayToAddresses(payments []Payment) error
	Sign(ctx context.Context) error
	Submit(ctx context.Context) (txHash string, err error)
}

// WalletProvider turns assembled payments into signed, submitted
// transactions. The toolkit only produces Payment lists; it never signs.
type WalletProvider interface {
	Address() string
	PaymentKeyHash() string
	StakingKeyHash() string
	NewTransaction(ctx context.Context) (Transaction, error)
}
