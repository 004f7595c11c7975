package solana

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"launchpad/internal/metrics"
)

const DefaultTimeout = 10 * time.Second

var (
	// ErrAccountNotFound is returned when the chain has no account at the address.
	ErrAccountNotFound = errors.New("account not found on chain")
	// ErrTransactionNotFound is returned when the chain does not know the signature.
	ErrTransactionNotFound = errors.New("transaction not found on chain")
	// ErrInvalidAddress is returned for strings that are not base58 public keys.
	ErrInvalidAddress = errors.New("invalid base58 address")
	// ErrInvalidSignature is returned for strings that are not base58 signatures.
	ErrInvalidSignature = errors.New("invalid base58 signature")
)

// MintAccount is the parsed on-chain state of an SPL mint.
type MintAccount struct {
	Address         string  `json:"mint_address"`
	Exists          bool    `json:"exists"`
	Verified        bool    `json:"verified"`
	Owner           *string `json:"owner"`
	Supply          *uint64 `json:"supply"`
	Decimals        *uint8  `json:"decimals"`
	FreezeAuthority *string `json:"freeze_authority"`
	MintAuthority   *string `json:"mint_authority"`
}

// TransactionStatus is the confirmation state of a signature.
type TransactionStatus struct {
	Signature string     `json:"signature"`
	Confirmed bool       `json:"confirmed"`
	Slot      *uint64    `json:"slot"`
	BlockTime *time.Time `json:"block_time"`
	Status    string     `json:"status"`
	Fee       *uint64    `json:"fee"`
}

// NetworkInfo describes the cluster behind the configured endpoint.
type NetworkInfo struct {
	Network     string                  `json:"network"`
	CurrentSlot uint64                  `json:"current_slot"`
	EpochInfo   *rpc.GetEpochInfoResult `json:"epoch_info"`
	RPCURL      string                  `json:"rpc_url"`
	Timestamp   time.Time               `json:"timestamp"`
}

// Client is a read-only Solana RPC client, safe for concurrent use.
type Client struct {
	endpoint string
	rpc      *rpc.Client
	timeout  time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout bounds every RPC call made by the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the given JSON-RPC endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		rpc:      rpc.New(endpoint),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the RPC url the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Network names the cluster from the endpoint url.
func (c *Client) Network() string {
	return NetworkFromURL(c.endpoint)
}

// NetworkFromURL returns "devnet" for devnet endpoints and "mainnet" otherwise.
func NetworkFromURL(url string) string {
	if strings.Contains(url, "devnet") {
		return "devnet"
	}
	return "mainnet"
}

func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveRPC(method, err, time.Since(start))
	if err != nil && !errors.Is(err, rpc.ErrNotFound) {
		log.WithFields(log.Fields{"method": method, "endpoint": c.endpoint}).Warnf("> rpc call failed: %v", err)
	}
	return err
}

// GetMintAccount fetches and parses the mint account at address.
// Returns ErrAccountNotFound when the chain reports no account.
func (c *Client) GetMintAccount(ctx context.Context, address string) (*MintAccount, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	var out *rpc.GetAccountInfoResult
	err = c.call(ctx, "getAccountInfo", func(ctx context.Context) error {
		var callErr error
		out, callErr = c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingJSONParsed,
			Commitment: rpc.CommitmentConfirmed,
		})
		return callErr
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo %s: %w", address, err)
	}

	account := &MintAccount{Address: address, Exists: true, Verified: true}
	if out.Value.Data == nil {
		return account, nil
	}
	parseMintInfo(out.Value.Data.GetRawJSON(), account)
	return account, nil
}

// parseMintInfo fills account from a jsonParsed spl-token mint payload.
// The owner reported for a mint is its mint authority.
func parseMintInfo(raw []byte, account *MintAccount) {
	if len(raw) == 0 {
		return
	}
	info := gjson.GetBytes(raw, "parsed.info")
	if !info.Exists() {
		return
	}

	if supply := info.Get("supply"); supply.Exists() {
		if v, err := strconv.ParseUint(supply.String(), 10, 64); err == nil {
			account.Supply = &v
		}
	}
	if decimals := info.Get("decimals"); decimals.Exists() {
		v := uint8(decimals.Uint())
		account.Decimals = &v
	}
	if auth := info.Get("mintAuthority"); auth.Exists() && auth.Type == gjson.String {
		v := auth.String()
		account.MintAuthority = &v
		owner := v
		account.Owner = &owner
	}
	if auth := info.Get("freezeAuthority"); auth.Exists() && auth.Type == gjson.String {
		v := auth.String()
		account.FreezeAuthority = &v
	}
}

// GetTransactionStatus reports whether signature landed and whether it succeeded.
// Returns ErrTransactionNotFound for unknown signatures.
func (c *Client) GetTransactionStatus(ctx context.Context, signature string) (*TransactionStatus, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, signature)
	}

	maxVer := rpc.MaxSupportedTransactionVersion0
	var out *rpc.GetTransactionResult
	err = c.call(ctx, "getTransaction", func(ctx context.Context) error {
		var callErr error
		out, callErr = c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVer,
		})
		return callErr
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && out == nil) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getTransaction %s: %w", signature, err)
	}

	slot := out.Slot
	status := &TransactionStatus{
		Signature: signature,
		Confirmed: true,
		Slot:      &slot,
		Status:    "confirmed",
	}
	if out.BlockTime != nil {
		t := out.BlockTime.Time().UTC()
		status.BlockTime = &t
	}
	if out.Meta != nil {
		fee := out.Meta.Fee
		status.Fee = &fee
		if out.Meta.Err != nil {
			status.Status = "failed"
		}
	}
	return status, nil
}

// GetNetworkInfo returns the current slot and epoch of the cluster.
func (c *Client) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	var slot uint64
	err := c.call(ctx, "getSlot", func(ctx context.Context) error {
		var callErr error
		slot, callErr = c.rpc.GetSlot(ctx, rpc.CommitmentFinalized)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("getSlot: %w", err)
	}

	var epoch *rpc.GetEpochInfoResult
	err = c.call(ctx, "getEpochInfo", func(ctx context.Context) error {
		var callErr error
		epoch, callErr = c.rpc.GetEpochInfo(ctx, rpc.CommitmentFinalized)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("getEpochInfo: %w", err)
	}

	return &NetworkInfo{
		Network:     c.Network(),
		CurrentSlot: slot,
		EpochInfo:   epoch,
		RPCURL:      c.endpoint,
		Timestamp:   time.Now().UTC(),
	}, nil
}
