package solana

import (
	"github.com/blocto/solana-go-sdk/types"
)

// NewAddress returns the base58 public key of a freshly generated keypair.
// Used to mint demo token and wallet addresses.
func NewAddress() string {
	return types.NewAccount().PublicKey.ToBase58()
}

// NewAddresses returns n fresh, distinct addresses.
func NewAddresses(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NewAddress())
	}
	return out
}
