package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	PumpFunProgramID          = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	MPLTokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
)

// Seeds for PDAs
var (
	SeedBondingCurve = []byte("bonding-curve")
	SeedMetadata     = []byte("metadata")
)

func parseMint(mint string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrInvalidAddress, mint)
	}
	return pk, nil
}

// BondingCurveAddress derives the bonding curve account of mint under the
// pump.fun program.
func BondingCurveAddress(mint string) (string, error) {
	pk, err := parseMint(mint)
	if err != nil {
		return "", err
	}
	addr, _, err := solana.FindProgramAddress([][]byte{SeedBondingCurve, pk.Bytes()}, PumpFunProgramID)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// MetadataAddress derives the Metaplex metadata account of mint.
func MetadataAddress(mint string) (string, error) {
	pk, err := parseMint(mint)
	if err != nil {
		return "", err
	}
	addr, _, err := solana.FindProgramAddress(
		[][]byte{SeedMetadata, MPLTokenMetadataProgramID.Bytes(), pk.Bytes()},
		MPLTokenMetadataProgramID,
	)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}
