package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"launchpad/internal/models"
	"launchpad/internal/services"
)

// TokenHandler serves the /tokens routes.
type TokenHandler struct {
	svc *services.TokenService
}

func NewTokenHandler(svc *services.TokenService) *TokenHandler {
	return &TokenHandler{svc: svc}
}

// CreateToken registers a newly minted token
func (h *TokenHandler) CreateToken(c *gin.Context) {
	var req services.CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	token, err := h.svc.CreateToken(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// ListTokens returns a page of active tokens
func (h *TokenHandler) ListTokens(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	req := services.ListTokensRequest{
		Creator:   c.Query("creator"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Page:      page,
	}
	if status := c.Query("status"); status != "" {
		s := models.GraduationStatus(status)
		req.Status = &s
	}

	result, err := h.svc.ListTokens(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TokenHandler) SearchTokens(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	query := c.Param("query")
	result, err := h.svc.SearchTokens(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tokens":      result.Tokens,
		"total_count": result.TotalCount,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
		"query":       query,
	})
}

func (h *TokenHandler) GetToken(c *gin.Context) {
	token, err := h.svc.GetToken(c.Request.Context(), c.Param("mint"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// UpdateToken applies a partial metrics update
func (h *TokenHandler) UpdateToken(c *gin.Context) {
	var req services.UpdateMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	token, err := h.svc.UpdateMetrics(c.Request.Context(), c.Param("mint"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *TokenHandler) ListTransactions(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}

	mint := c.Param("mint")
	result, err := h.svc.ListTokenTransactions(c.Request.Context(), mint, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": result.Transactions,
		"total_count":  result.TotalCount,
		"page":         result.Page,
		"page_size":    result.PageSize,
		"total_pages":  result.TotalPages,
		"mint_address": mint,
	})
}

func (h *TokenHandler) RecordTransaction(c *gin.Context) {
	var req services.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	tx, err := h.svc.RecordTransaction(c.Request.Context(), c.Param("mint"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *TokenHandler) ListPairs(c *gin.Context) {
	pairs, err := h.svc.ListTradingPairs(c.Request.Context(), c.Param("mint"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pairs)
}

func (h *TokenHandler) ListGraduations(c *gin.Context) {
	records, err := h.svc.ListGraduations(c.Request.Context(), c.Param("mint"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Graduate moves an eligible token to its raydium pool
func (h *TokenHandler) Graduate(c *gin.Context) {
	fee := 0.0
	if raw := c.Query("graduation_fee"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "graduation_fee", "must be a number")
			return
		}
		fee = v
	}

	result, err := h.svc.Graduate(c.Request.Context(), c.Param("mint"), c.Query("raydium_pool_id"), fee)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TokenHandler) VerifyContract(c *gin.Context) {
	result, err := h.svc.VerifyContract(c.Request.Context(), c.Param("mint"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
