package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"launchpad/internal/services"
	"launchpad/pkg/solana"
)

// ChainReader is the read side of the Solana client the blockchain routes use.
type ChainReader interface {
	GetMintAccount(ctx context.Context, address string) (*solana.MintAccount, error)
	GetTransactionStatus(ctx context.Context, signature string) (*solana.TransactionStatus, error)
	GetNetworkInfo(ctx context.Context) (*solana.NetworkInfo, error)
	Network() string
}

// BlockchainHandler serves the /blockchain routes.
type BlockchainHandler struct {
	chain ChainReader
	svc   *services.TokenService
}

func NewBlockchainHandler(chain ChainReader, svc *services.TokenService) *BlockchainHandler {
	return &BlockchainHandler{chain: chain, svc: svc}
}

func chainFailure(c *gin.Context, op string, err error) {
	respondError(c, &services.UpstreamError{Service: "chain", Op: op, Err: err})
}

// VerifyToken reports the mint account at :mint. A missing account is not an error.
func (h *BlockchainHandler) VerifyToken(c *gin.Context) {
	mint := c.Param("mint")
	account, err := h.chain.GetMintAccount(c.Request.Context(), mint)
	switch {
	case errors.Is(err, solana.ErrAccountNotFound):
		c.JSON(http.StatusOK, solana.MintAccount{Address: mint})
		return
	case errors.Is(err, solana.ErrInvalidAddress):
		badRequest(c, "mint_address", "not a base58 public key")
		return
	case err != nil:
		chainFailure(c, "verify token", err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *BlockchainHandler) VerifyTransaction(c *gin.Context) {
	sig := c.Param("signature")
	status, err := h.chain.GetTransactionStatus(c.Request.Context(), sig)
	switch {
	case errors.Is(err, solana.ErrTransactionNotFound):
		c.JSON(http.StatusOK, solana.TransactionStatus{Signature: sig, Status: "not_found"})
		return
	case errors.Is(err, solana.ErrInvalidSignature):
		badRequest(c, "signature", "not a base58 signature")
		return
	case err != nil:
		chainFailure(c, "verify transaction", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *BlockchainHandler) NetworkInfo(c *gin.Context) {
	info, err := h.chain.GetNetworkInfo(c.Request.Context())
	if err != nil {
		chainFailure(c, "network info", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *BlockchainHandler) PlatformAnalytics(c *gin.Context) {
	analytics, err := h.svc.GetPlatformAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// SyncToken records the on-chain mint state on the stored token
func (h *BlockchainHandler) SyncToken(c *gin.Context) {
	result, err := h.svc.SyncFromChain(c.Request.Context(), c.Param("mint"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BlockchainHandler) ExplorerLinks(c *gin.Context) {
	c.JSON(http.StatusOK, solana.LinksFor(c.Param("address"), h.chain.Network()))
}
