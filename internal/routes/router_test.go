package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/events"
	"launchpad/internal/handlers"
	"launchpad/internal/images"
	"launchpad/internal/middleware"
	"launchpad/internal/services"
	"launchpad/internal/storage/memory"
	"launchpad/pkg/solana"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChain struct {
	mu       sync.Mutex
	accounts map[string]*solana.MintAccount
	txs      map[string]*solana.TransactionStatus
	err      error
	healthy  bool
}

func (f *fakeChain) GetMintAccount(_ context.Context, address string) (*solana.MintAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if strings.Contains(address, "!") {
		return nil, solana.ErrInvalidAddress
	}
	acc, ok := f.accounts[address]
	if !ok {
		return nil, solana.ErrAccountNotFound
	}
	return acc, nil
}

func (f *fakeChain) GetTransactionStatus(_ context.Context, sig string) (*solana.TransactionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(sig, "!") {
		return nil, solana.ErrInvalidSignature
	}
	st, ok := f.txs[sig]
	if !ok {
		return nil, solana.ErrTransactionNotFound
	}
	return st, nil
}

func (f *fakeChain) GetNetworkInfo(context.Context) (*solana.NetworkInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &solana.NetworkInfo{Network: "devnet", CurrentSlot: 42, RPCURL: "https://api.devnet.solana.com"}, nil
}

func (f *fakeChain) Network() string { return "devnet" }

func (f *fakeChain) Health(context.Context) solana.EndpointHealth {
	return solana.EndpointHealth{URL: "fake", OK: f.healthy}
}

type testServer struct {
	router   *gin.Engine
	chain    *fakeChain
	recorder *events.Recorder
	dbErr    error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ts := &testServer{
		chain:    &fakeChain{accounts: map[string]*solana.MintAccount{}, txs: map[string]*solana.TransactionStatus{}, healthy: true},
		recorder: &events.Recorder{},
	}
	store := memory.NewStore()
	svc := services.NewTokenService(store, ts.chain, services.Config{GraduationThreshold: 69000}, ts.recorder, nil)

	dir := t.TempDir()
	blobs, err := images.NewDiskStore(dir)
	require.NoError(t, err)
	imgSvc := images.NewService(store, blobs, "http://api.test", images.DefaultMaxFileSize)

	ts.router = SetupRouter(ctx, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      middleware.RateLimiterConfig{RequestsPerSecond: 1000, Burst: 1000},
		StaticDir:      dir,
		Tokens:         handlers.NewTokenHandler(svc),
		Images:         handlers.NewImageHandler(imgSvc),
		Blockchain:     handlers.NewBlockchainHandler(ts.chain, svc),
		Health:         handlers.NewHealthHandler(func(context.Context) error { return ts.dbErr }, ts.chain),
		Hub:            events.NewHub(nil),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createBody(mint string) map[string]interface{} {
	return map[string]interface{}{
		"mint_address":   mint,
		"name":           "Test " + mint,
		"symbol":         "TST",
		"description":    "a test token",
		"creator_wallet": "Creator1",
	}
}

func TestTokenLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "POST", "/api/v1/tokens/create", createBody("MintA"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)
	assert.Equal(t, "pending", token["graduation_status"])
	assert.Equal(t, "https://explorer.solana.com/address/MintA", token["solana_explorer_url"])

	w = ts.do(t, "POST", "/api/v1/tokens/create", createBody("MintA"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode(t, w)["error"])

	w = ts.do(t, "POST", "/api/v1/tokens/MintA/graduate?raydium_pool_id=Pool1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_state", decode(t, w)["error"])

	w = ts.do(t, "PUT", "/api/v1/tokens/MintA", map[string]interface{}{"market_cap": 70000, "total_volume": 1234.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "eligible", decode(t, w)["graduation_status"])

	w = ts.do(t, "POST", "/api/v1/tokens/MintA/graduate?raydium_pool_id=Pool1&graduation_fee=2.5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, "Pool1", res["raydium_pool_id"])

	w = ts.do(t, "POST", "/api/v1/tokens/MintA/graduate?raydium_pool_id=Pool2", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "GET", "/api/v1/tokens/MintA/pairs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pairs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pairs))
	assert.Len(t, pairs, 2)

	w = ts.do(t, "GET", "/api/v1/tokens/MintA/graduations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/api/v1/blockchain/analytics/platform", nil)
	require.Equal(t, http.StatusOK, w.Code)
	analytics := decode(t, w)
	assert.Equal(t, 1.0, analytics["graduated_tokens"])
	assert.Equal(t, 2.5, analytics["platform_revenue"])

	assert.Equal(t, []events.Type{
		events.TokenCreated, events.TokenUpdated, events.TokenStatusChanged, events.TokenGraduated,
	}, ts.recorder.Types())
}

func TestTokenErrorsOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/api/v1/tokens/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "token", body["details"].(map[string]interface{})["entity"])

	bad := createBody("M")
	bad["name"] = strings.Repeat("x", 33)
	w = ts.do(t, "POST", "/api/v1/tokens/create", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", decode(t, w)["details"].(map[string]interface{})["field"])

	req := httptest.NewRequest("POST", "/api/v1/tokens/create", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{
		"/api/v1/tokens?page=0",
		"/api/v1/tokens?page=922337203685477580&page_size=100",
		"/api/v1/tokens?page=x",
		"/api/v1/tokens?page_size=101",
		"/api/v1/tokens?sort_by=secret",
		"/api/v1/tokens?sort_order=sideways",
		"/api/v1/tokens?status=moon",
	} {
		w = ts.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w = ts.do(t, "POST", "/api/v1/tokens/missing/graduate?raydium_pool_id=P&graduation_fee=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndSearchOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	for _, m := range []string{"Alpha", "Beta", "Gamma"} {
		require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/v1/tokens/create", createBody(m)).Code)
	}

	w := ts.do(t, "GET", "/api/v1/tokens?page=2&page_size=2&sort_by=name&sort_order=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, 3.0, page["total_count"])
	assert.Equal(t, 2.0, page["total_pages"])
	tokens := page["tokens"].([]interface{})
	require.Len(t, tokens, 1)
	assert.Equal(t, "Gamma", tokens[0].(map[string]interface{})["mint_address"])

	w = ts.do(t, "GET", "/api/v1/tokens/search/bet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode(t, w)
	assert.Equal(t, 1.0, result["total_count"])
	assert.Equal(t, "bet", result["query"])
}

func TestTransactionsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/v1/tokens/create", createBody("M1")).Code)

	tx := map[string]interface{}{
		"transaction_signature": "sig1",
		"user_wallet":           "W1",
		"transaction_type":      "buy",
		"sol_amount":            1.5,
		"token_amount":          1000,
		"price_per_token":       0.0015,
	}
	w := ts.do(t, "POST", "/api/v1/tokens/M1/transactions", tx)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, "POST", "/api/v1/tokens/M1/transactions", tx)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "GET", "/api/v1/tokens/M1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, 1.0, page["total_count"])
	assert.Equal(t, "M1", page["mint_address"])

	w = ts.do(t, "GET", "/api/v1/tokens/nope/transactions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlockchainRoutes(t *testing.T) {
	ts := newTestServer(t)
	supply := uint64(1000)
	ts.chain.accounts["M1"] = &solana.MintAccount{Address: "M1", Exists: true, Verified: true, Supply: &supply}
	slot := uint64(7)
	ts.chain.txs["S1"] = &solana.TransactionStatus{Signature: "S1", Confirmed: true, Slot: &slot, Status: "confirmed"}

	w := ts.do(t, "GET", "/api/v1/blockchain/verify/token/M1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["exists"])

	w = ts.do(t, "GET", "/api/v1/blockchain/verify/token/M2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, "M2", body["mint_address"])

	w = ts.do(t, "GET", "/api/v1/blockchain/verify/token/bad!", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/v1/blockchain/verify/transaction/S1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode(t, w)["status"])

	w = ts.do(t, "GET", "/api/v1/blockchain/verify/transaction/S2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["status"])

	w = ts.do(t, "GET", "/api/v1/blockchain/network/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "devnet", decode(t, w)["network"])

	w = ts.do(t, "GET", "/api/v1/blockchain/explorer/Addr1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://solscan.io/address/Addr1", decode(t, w)["solscan"])

	// Sync: token must exist in the store after the chain answers.
	w = ts.do(t, "POST", "/api/v1/blockchain/sync/token/M1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/v1/tokens/create", createBody("M1")).Code)
	w = ts.do(t, "POST", "/api/v1/blockchain/sync/token/M1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Token synced successfully", decode(t, w)["message"])

	w = ts.do(t, "GET", "/api/v1/tokens/M1/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["verified"])

	ts.chain.err = errors.New("rpc unavailable")
	w = ts.do(t, "GET", "/api/v1/blockchain/network/info", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_error", decode(t, w)["error"])
}

func TestImageRoutes(t *testing.T) {
	ts := newTestServer(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	upload := func(contentType string, data []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="logo.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest("POST", "/api/v1/images/upload", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		return w
	}

	w := upload("image/png", img.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	meta := decode(t, w)
	uri := meta["uri"].(string)
	assert.True(t, strings.HasPrefix(uri, "img_"))

	w = ts.do(t, "GET", "/api/v1/images/"+uri, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, img.Bytes(), w.Body.Bytes())

	w = ts.do(t, "GET", "/static/images/"+meta["filename"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = upload("text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/v1/images/img_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	ts.chain.healthy = false
	w = ts.do(t, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", decode(t, w)["status"])

	ts.dbErr = errors.New("connection refused")
	w = ts.do(t, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = ts.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "launchpad_http_requests_total")
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, "GET", "/health", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}
