package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/storage"
)

// ListTokensRequest selects one page of active tokens.
type ListTokensRequest struct {
	Status    *models.GraduationStatus
	Creator   string
	SortBy    string
	SortOrder string
	Page      PageRequest
}

// TokenPage is one page of tokens.
type TokenPage struct {
	Tokens []models.Token `json:"tokens"`
	Pagination
}

// TransactionPage is one page of a token's transactions.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Pagination
}

// RecordTransactionRequest is a trading event reported by the indexer or the frontend.
type RecordTransactionRequest struct {
	TransactionSignature string                 `json:"transaction_signature" validate:"required,max=128"`
	UserWallet           string                 `json:"user_wallet" validate:"required,max=64"`
	TransactionType      models.TransactionType `json:"transaction_type" validate:"required"`
	SolAmount            float64                `json:"sol_amount" validate:"gte=0"`
	TokenAmount          uint64                 `json:"token_amount"`
	PricePerToken        float64                `json:"price_per_token" validate:"gte=0"`
	MarketCapBefore      *float64               `json:"market_cap_before" validate:"omitempty,gte=0"`
	MarketCapAfter       *float64               `json:"market_cap_after" validate:"omitempty,gte=0"`
	BlockHeight          *uint64                `json:"block_height"`
}

func boolPtr(b bool) *bool { return &b }

// ListTokens returns active tokens, optionally filtered by status and creator.
func (s *TokenService) ListTokens(ctx context.Context, req ListTokensRequest) (*TokenPage, error) {
	const op = "list tokens"

	page, err := req.Page.normalize(op)
	if err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !storage.IsSortField(sortBy) {
		return nil, &ValidationError{Op: op, Field: "sort_by", Reason: "unsupported sort field " + sortBy}
	}
	desc := true
	switch strings.ToLower(req.SortOrder) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, &ValidationError{Op: op, Field: "sort_order", Reason: "must be asc or desc"}
	}

	filter := storage.TokenFilter{Active: boolPtr(true)}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, &ValidationError{Op: op, Field: "status", Reason: "unknown status " + string(*req.Status)}
		}
		filter.Status = req.Status
	}
	if creator := strings.TrimSpace(req.Creator); creator != "" {
		filter.Creator = &creator
	}

	tokens, total, err := s.store.ListTokens(ctx, storage.TokenQuery{
		Filter: filter,
		SortBy: sortBy,
		Desc:   desc,
		Offset: page.offset(),
		Limit:  page.PageSize,
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	return &TokenPage{Tokens: tokens, Pagination: newPagination(page, total)}, nil
}

// SearchTokens matches query case-insensitively against name, symbol, mint and description.
func (s *TokenService) SearchTokens(ctx context.Context, query string, req PageRequest) (*TokenPage, error) {
	const op = "search tokens"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Op: op, Field: "query", Reason: "required"}
	}
	page, err := req.normalize(op)
	if err != nil {
		return nil, err
	}

	tokens, total, err := s.store.ListTokens(ctx, storage.TokenQuery{
		Filter: storage.TokenFilter{Active: boolPtr(true)},
		Search: query,
		SortBy: "created_at",
		Desc:   true,
		Offset: page.offset(),
		Limit:  page.PageSize,
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	return &TokenPage{Tokens: tokens, Pagination: newPagination(page, total)}, nil
}

// ListTokenTransactions returns a token's trades, newest first.
func (s *TokenService) ListTokenTransactions(ctx context.Context, mint string, req PageRequest) (*TransactionPage, error) {
	const op = "list transactions"

	page, err := req.normalize(op)
	if err != nil {
		return nil, err
	}
	if _, err := s.getToken(ctx, op, mint); err != nil {
		return nil, err
	}

	txs, total, err := s.store.ListTransactions(ctx, mint, page.offset(), page.PageSize)
	if err != nil {
		return nil, storeError(op, err)
	}
	return &TransactionPage{Transactions: txs, Pagination: newPagination(page, total)}, nil
}

// RecordTransaction appends a trade to the token's log. Token metrics are not
// recomputed; they change only through UpdateMetrics.
func (s *TokenService) RecordTransaction(ctx context.Context, mint string, req RecordTransactionRequest) (*models.Transaction, error) {
	const op = "record transaction"

	if err := validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}
	if !req.TransactionType.Valid() {
		return nil, &ValidationError{Op: op, Field: "transaction_type", Reason: "must be buy, sell or create"}
	}
	if _, err := s.getToken(ctx, op, mint); err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		MintAddress:          mint,
		TransactionSignature: req.TransactionSignature,
		UserWallet:           req.UserWallet,
		TransactionType:      req.TransactionType,
		SolAmount:            req.SolAmount,
		TokenAmount:          req.TokenAmount,
		PricePerToken:        req.PricePerToken,
		MarketCapBefore:      req.MarketCapBefore,
		MarketCapAfter:       req.MarketCapAfter,
		Timestamp:            s.now(),
		BlockHeight:          req.BlockHeight,
	}
	err := s.store.InsertTransaction(ctx, tx)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, &ConflictError{Entity: "transaction", ID: req.TransactionSignature, Op: op, Err: err}
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	log.WithFields(log.Fields{"mint": mint, "signature": tx.TransactionSignature, "type": tx.TransactionType}).Debug("transaction recorded")
	return tx, nil
}

// ListTradingPairs returns the bonding curve pair and, once graduated, the pool pair.
func (s *TokenService) ListTradingPairs(ctx context.Context, mint string) ([]models.TradingPair, error) {
	const op = "list trading pairs"

	if _, err := s.getToken(ctx, op, mint); err != nil {
		return nil, err
	}
	pairs, err := s.store.ListTradingPairs(ctx, mint)
	if err != nil {
		return nil, storeError(op, err)
	}
	return pairs, nil
}

// ListGraduations returns the graduation records of a token.
func (s *TokenService) ListGraduations(ctx context.Context, mint string) ([]models.Graduation, error) {
	const op = "list graduations"

	if _, err := s.getToken(ctx, op, mint); err != nil {
		return nil, err
	}
	grads, err := s.store.ListGraduations(ctx, mint)
	if err != nil {
		return nil, storeError(op, err)
	}
	return grads, nil
}
