package solana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeRPC answers JSON-RPC calls with canned results keyed by method.
type fakeRPC struct {
	mu      sync.Mutex
	results map[string]string
	calls   []string
}

func newFakeRPC(t *testing.T, results map[string]string) (*fakeRPC, *httptest.Server) {
	f := &fakeRPC{results: results}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		method := gjson.GetBytes(body, "method").String()
		id := gjson.GetBytes(body, "id").Raw

		f.mu.Lock()
		f.calls = append(f.calls, method)
		result, ok := f.results[method]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32601,"message":"Method not found"}}`, id)
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, id, result)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

const testMint = "So11111111111111111111111111111111111111112"
const testAuthority = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

const mintAccountResult = `{
  "context": {"slot": 1},
  "value": {
    "data": {
      "parsed": {
        "info": {
          "decimals": 9,
          "freezeAuthority": null,
          "isInitialized": true,
          "mintAuthority": "` + testAuthority + `",
          "supply": "1000000000000000000"
        },
        "type": "mint"
      },
      "program": "spl-token",
      "space": 82
    },
    "executable": false,
    "lamports": 1461600,
    "owner": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
    "rentEpoch": 0
  }
}`

func TestGetMintAccount(t *testing.T) {
	_, srv := newFakeRPC(t, map[string]string{"getAccountInfo": mintAccountResult})
	client := NewClient(srv.URL, WithTimeout(2*time.Second))

	account, err := client.GetMintAccount(context.Background(), testMint)
	require.NoError(t, err)
	assert.True(t, account.Exists)
	assert.True(t, account.Verified)
	require.NotNil(t, account.Supply)
	assert.Equal(t, uint64(1_000_000_000_000_000_000), *account.Supply)
	require.NotNil(t, account.Decimals)
	assert.Equal(t, uint8(9), *account.Decimals)
	require.NotNil(t, account.Owner)
	assert.Equal(t, testAuthority, *account.Owner)
	assert.Nil(t, account.FreezeAuthority)
}

func TestGetMintAccountMissing(t *testing.T) {
	_, srv := newFakeRPC(t, map[string]string{"getAccountInfo": `{"context":{"slot":1},"value":null}`})
	client := NewClient(srv.URL)

	_, err := client.GetMintAccount(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetMintAccountInvalidAddress(t *testing.T) {
	f, srv := newFakeRPC(t, map[string]string{})
	client := NewClient(srv.URL)

	_, err := client.GetMintAccount(context.Background(), "not-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Empty(t, f.calls)
}

func TestGetMintAccountRPCError(t *testing.T) {
	_, srv := newFakeRPC(t, map[string]string{})
	client := NewClient(srv.URL)

	_, err := client.GetMintAccount(context.Background(), testMint)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAccountNotFound))
}

var testSignature = func() string {
	var sig solana.Signature
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	return sig.String()
}()

func TestGetTransactionStatus(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		_, srv := newFakeRPC(t, map[string]string{
			"getTransaction": `{"slot":4242,"blockTime":1700000000,"meta":{"err":null,"fee":5000,"preBalances":[],"postBalances":[]},"transaction":["AQ==","base64"]}`,
		})
		status, err := NewClient(srv.URL).GetTransactionStatus(context.Background(), testSignature)
		require.NoError(t, err)
		assert.True(t, status.Confirmed)
		assert.Equal(t, "confirmed", status.Status)
		require.NotNil(t, status.Slot)
		assert.Equal(t, uint64(4242), *status.Slot)
		require.NotNil(t, status.Fee)
		assert.Equal(t, uint64(5000), *status.Fee)
		require.NotNil(t, status.BlockTime)
		assert.Equal(t, int64(1700000000), status.BlockTime.Unix())
	})

	t.Run("failed", func(t *testing.T) {
		_, srv := newFakeRPC(t, map[string]string{
			"getTransaction": `{"slot":7,"blockTime":null,"meta":{"err":{"InstructionError":[0,{"Custom":1}]},"fee":5000,"preBalances":[],"postBalances":[]},"transaction":["AQ==","base64"]}`,
		})
		status, err := NewClient(srv.URL).GetTransactionStatus(context.Background(), testSignature)
		require.NoError(t, err)
		assert.Equal(t, "failed", status.Status)
		assert.Nil(t, status.BlockTime)
	})

	t.Run("unknown signature", func(t *testing.T) {
		_, srv := newFakeRPC(t, map[string]string{"getTransaction": `null`})
		_, err := NewClient(srv.URL).GetTransactionStatus(context.Background(), testSignature)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("invalid signature", func(t *testing.T) {
		_, srv := newFakeRPC(t, map[string]string{})
		_, err := NewClient(srv.URL).GetTransactionStatus(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}

func TestGetNetworkInfo(t *testing.T) {
	_, srv := newFakeRPC(t, map[string]string{
		"getSlot":      `1234`,
		"getEpochInfo": `{"absoluteSlot":1234,"blockHeight":1200,"epoch":5,"slotIndex":34,"slotsInEpoch":432000,"transactionCount":99}`,
	})
	info, err := NewClient(srv.URL).GetNetworkInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), info.CurrentSlot)
	require.NotNil(t, info.EpochInfo)
	assert.Equal(t, uint64(5), info.EpochInfo.Epoch)
	assert.Equal(t, "mainnet", info.Network)
	assert.Equal(t, srv.URL, info.RPCURL)
}

func TestNetworkFromURL(t *testing.T) {
	assert.Equal(t, "devnet", NetworkFromURL("https://api.devnet.solana.com"))
	assert.Equal(t, "mainnet", NetworkFromURL("https://api.mainnet-beta.solana.com"))
}

func TestHealth(t *testing.T) {
	_, healthy := newFakeRPC(t, map[string]string{"getHealth": `"ok"`})
	_, broken := newFakeRPC(t, map[string]string{})

	assert.True(t, NewClient(healthy.URL).Health(context.Background()).OK)

	down := NewClient(broken.URL, WithTimeout(time.Second)).Health(context.Background())
	assert.False(t, down.OK)
	assert.NotEmpty(t, down.Error)
	assert.Equal(t, broken.URL, down.URL)
}

func TestLinksFor(t *testing.T) {
	links := LinksFor(testMint, "devnet")
	assert.Equal(t, "https://explorer.solana.com/address/"+testMint, links.SolanaExplorer)
	assert.Equal(t, "https://solscan.io/address/"+testMint, links.Solscan)
	assert.Equal(t, "https://solana.fm/address/"+testMint, links.SolanaFM)
	assert.Equal(t, "devnet", links.Network)
	assert.Equal(t, "https://solscan.io/token/"+testMint, SolscanTokenURL(testMint))
}

func TestNewAddresses(t *testing.T) {
	addrs := NewAddresses(3)
	require.Len(t, addrs, 3)
	assert.NotEqual(t, addrs[0], addrs[1])
	for _, a := range addrs {
		assert.GreaterOrEqual(t, len(a), 32)
	}
}
