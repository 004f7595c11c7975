package solana

import "fmt"

// ExplorerLinks are the public explorer pages for an address.
type ExplorerLinks struct {
	Address        string `json:"address"`
	SolanaExplorer string `json:"solana_explorer"`
	Solscan        string `json:"solscan"`
	SolanaFM       string `json:"solana_fm"`
	Network        string `json:"network"`
}

// SolanaExplorerURL is the explorer.solana.com page of address.
func SolanaExplorerURL(address string) string {
	return fmt.Sprintf("https://explorer.solana.com/address/%s", address)
}

// SolscanTokenURL is the solscan token page of mint.
func SolscanTokenURL(mint string) string {
	return fmt.Sprintf("https://solscan.io/token/%s", mint)
}

// LinksFor builds explorer links for any address.
func LinksFor(address, network string) ExplorerLinks {
	return ExplorerLinks{
		Address:        address,
		SolanaExplorer: SolanaExplorerURL(address),
		Solscan:        fmt.Sprintf("https://solscan.io/address/%s", address),
		SolanaFM:       fmt.Sprintf("https://solana.fm/address/%s", address),
		Network:        network,
	}
}
