package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"launchpad/internal/events"
	"launchpad/internal/metrics"
	"launchpad/internal/models"
	"launchpad/internal/storage"
	"launchpad/pkg/solana"
)

const (
	DefaultGraduationThreshold = 69000.0
	DefaultMaxUpdateAttempts   = 3
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validationError converts the first validator failure into a ValidationError.
func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &ValidationError{Op: op, Field: fe.Field(), Reason: "failed " + reason}
	}
	return &ValidationError{Op: op, Reason: err.Error()}
}

// Chain is the read side of the blockchain the manager verifies against.
type Chain interface {
	GetMintAccount(ctx context.Context, mint string) (*solana.MintAccount, error)
}

// AnalyticsCache stores the last computed platform analytics.
// GetAnalytics returns nil, nil on a miss.
type AnalyticsCache interface {
	GetAnalytics(ctx context.Context) (*models.PlatformAnalytics, error)
	SetAnalytics(ctx context.Context, a *models.PlatformAnalytics) error
	Invalidate(ctx context.Context) error
}

// Config carries the platform settings the manager needs.
type Config struct {
	GraduationThreshold float64
	MaxUpdateAttempts   int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// TokenService owns token records and the graduation state machine.
// It holds no mutable state of its own and is safe for concurrent use.
type TokenService struct {
	store     storage.Store
	chain     Chain
	cfg       Config
	publisher events.Publisher
	cache     AnalyticsCache
}

// NewTokenService wires the manager. publisher and cache may be nil.
func NewTokenService(store storage.Store, chain Chain, cfg Config, publisher events.Publisher, cache AnalyticsCache) *TokenService {
	if cfg.GraduationThreshold <= 0 {
		cfg.GraduationThreshold = DefaultGraduationThreshold
	}
	if cfg.MaxUpdateAttempts <= 0 {
		cfg.MaxUpdateAttempts = DefaultMaxUpdateAttempts
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TokenService{
		store:     store,
		chain:     chain,
		cfg:       cfg,
		publisher: publisher,
		cache:     cache,
	}
}

// CreateTokenRequest is the registration of a token already minted on chain.
type CreateTokenRequest struct {
	MintAddress           string  `json:"mint_address" validate:"required,max=64"`
	Name                  string  `json:"name" validate:"required,max=32"`
	Symbol                string  `json:"symbol" validate:"required,max=10"`
	Description           string  `json:"description" validate:"max=500"`
	ImageURI              string  `json:"image_uri" validate:"max=200"`
	CreatorWallet         string  `json:"creator_wallet" validate:"required,max=64"`
	InitialPurchaseAmount *uint64 `json:"initial_purchase_amount"`
}

// UpdateMetricsRequest is a partial metrics update. Nil fields are absent;
// an explicit JSON null decodes to nil and is treated as absent too.
type UpdateMetricsRequest struct {
	CurrentPrice      *float64                 `json:"current_price" validate:"omitempty,gte=0"`
	MarketCap         *float64                 `json:"market_cap" validate:"omitempty,gte=0"`
	TotalVolume       *float64                 `json:"total_volume" validate:"omitempty,gte=0"`
	HolderCount       *int64                   `json:"holder_count" validate:"omitempty,gte=0"`
	TransactionsCount *int64                   `json:"transactions_count" validate:"omitempty,gte=0"`
	ContractVerified  *bool                    `json:"contract_verified"`
	GraduationStatus  *models.GraduationStatus `json:"graduation_status"`
}

// GraduationResult confirms a graduation.
type GraduationResult struct {
	Message       string             `json:"message"`
	MintAddress   string             `json:"mint_address"`
	RaydiumPoolID string             `json:"raydium_pool_id"`
	Graduation    *models.Graduation `json:"graduation"`
}

func (s *TokenService) now() time.Time {
	return s.cfg.Now()
}

func (s *TokenService) getToken(ctx context.Context, op, mint string) (*models.Token, error) {
	token, err := s.store.GetToken(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Entity: "token", ID: mint, Op: op, Err: err}
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return token, nil
}

// CreateToken registers a token with the fixed supply split and its bonding curve pair.
func (s *TokenService) CreateToken(ctx context.Context, req CreateTokenRequest) (*models.Token, error) {
	const op = "create token"

	req.MintAddress = strings.TrimSpace(req.MintAddress)
	req.CreatorWallet = strings.TrimSpace(req.CreatorWallet)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}

	now := s.now()
	token := &models.Token{
		MintAddress:   req.MintAddress,
		CreatorWallet: req.CreatorWallet,
		Name:          req.Name,
		Symbol:        req.Symbol,
		Description:   req.Description,
		ImageURI:      req.ImageURI,

		TotalSupply:        models.TokenTotalSupply,
		Decimals:           models.TokenDecimals,
		BondingCurveSupply: models.BondingCurveSupply,
		BurningReserve:     models.BurningReserve,

		HolderCount:       1,
		TransactionsCount: 1,

		GraduationStatus:    models.GraduationPending,
		GraduationThreshold: s.cfg.GraduationThreshold,

		SolanaExplorerURL: solana.SolanaExplorerURL(req.MintAddress),
		SolscanURL:        solana.SolscanTokenURL(req.MintAddress),

		InitialPurchaseAmount: req.InitialPurchaseAmount,
		IsActive:              true,
		CreatedAt:             now,
	}
	pair := models.NewBondingCurvePair(req.MintAddress, now)
	if curve, err := solana.BondingCurveAddress(req.MintAddress); err == nil {
		pair.CurveAddress = &curve
	}

	err := s.store.CreateToken(ctx, token, pair)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, &ConflictError{Entity: "token", ID: req.MintAddress, Op: op, Err: err}
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	log.WithFields(log.Fields{"mint": token.MintAddress, "creator": token.CreatorWallet}).Info("token created")
	metrics.TokenCreated()
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TokenCreated,
		MintAddress: token.MintAddress,
		Status:      token.GraduationStatus,
		Data:        token,
		Timestamp:   now,
	})
	return token, nil
}

// GetToken returns a token by mint address.
func (s *TokenService) GetToken(ctx context.Context, mint string) (*models.Token, error) {
	return s.getToken(ctx, "get token", mint)
}

// nextStatus applies the graduation state machine to an update.
// An explicit status wins over the one derived from market cap.
func nextStatus(op string, token *models.Token, req UpdateMetricsRequest) (models.GraduationStatus, error) {
	current := token.GraduationStatus

	if req.GraduationStatus != nil {
		want := *req.GraduationStatus
		switch {
		case !want.Valid():
			return current, &ValidationError{Op: op, Field: "graduation_status", Reason: "unknown status " + string(want)}
		case want == current:
			return current, nil
		case want == models.GraduationGraduated:
			return current, &InvalidStateError{Entity: "token", ID: token.MintAddress, Op: op, State: string(current), Reason: "graduation requires the graduate operation"}
		case current == models.GraduationGraduated:
			return current, &InvalidStateError{Entity: "token", ID: token.MintAddress, Op: op, State: string(current), Reason: "graduated tokens cannot change status"}
		}
		return want, nil
	}

	if req.MarketCap != nil && *req.MarketCap >= token.GraduationThreshold && current != models.GraduationGraduated {
		return models.GraduationEligible, nil
	}
	return current, nil
}

// UpdateMetrics applies a partial metrics update and re-evaluates eligibility.
// The write is conditional on the status it was computed from; a concurrent
// status change causes a re-read, up to the configured number of attempts.
func (s *TokenService) UpdateMetrics(ctx context.Context, mint string, req UpdateMetricsRequest) (*models.Token, error) {
	const op = "update token"

	if err := validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}
	for _, v := range []*float64{req.CurrentPrice, req.MarketCap, req.TotalVolume} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return nil, &ValidationError{Op: op, Reason: "metrics must be finite numbers"}
		}
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxUpdateAttempts; attempt++ {
		token, err := s.getToken(ctx, op, mint)
		if err != nil {
			return nil, err
		}

		next, err := nextStatus(op, token, req)
		if err != nil {
			return nil, err
		}

		now := s.now()
		u := storage.TokenUpdate{
			CurrentPrice:      req.CurrentPrice,
			MarketCap:         req.MarketCap,
			TotalVolume:       req.TotalVolume,
			HolderCount:       req.HolderCount,
			TransactionsCount: req.TransactionsCount,
			ContractVerified:  req.ContractVerified,
			UpdatedAt:         now,
		}
		if req.ContractVerified != nil && *req.ContractVerified {
			u.LastVerified = &now
		}
		if next != token.GraduationStatus {
			u.GraduationStatus = &next
		}

		err = s.store.UpdateToken(ctx, mint, token.GraduationStatus, u)
		if errors.Is(err, storage.ErrStaleState) {
			lastErr = err
			log.WithFields(log.Fields{"mint": mint, "attempt": attempt + 1}).Debug("status moved during update, retrying")
			continue
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Entity: "token", ID: mint, Op: op, Err: err}
		}
		if err != nil {
			return nil, storeError(op, err)
		}

		updated, err := s.getToken(ctx, op, mint)
		if err != nil {
			return nil, err
		}
		s.afterUpdate(ctx, token.GraduationStatus, updated, now)
		return updated, nil
	}
	return nil, storeError(op, lastErr)
}

func (s *TokenService) afterUpdate(ctx context.Context, previous models.GraduationStatus, token *models.Token, at time.Time) {
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TokenUpdated,
		MintAddress: token.MintAddress,
		Status:      token.GraduationStatus,
		Data:        token,
		Timestamp:   at,
	})
	if previous == token.GraduationStatus {
		return
	}

	log.WithFields(log.Fields{
		"mint": token.MintAddress,
		"from": previous,
		"to":   token.GraduationStatus,
	}).Info("graduation status changed")
	metrics.StatusTransition(string(previous), string(token.GraduationStatus))
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TokenStatusChanged,
		MintAddress: token.MintAddress,
		Status:      token.GraduationStatus,
		Previous:    previous,
		Timestamp:   at,
	})
}

// Graduate moves an eligible token to its raydium pool. The status flip, the
// graduation record and the pool pair are written together or not at all.
func (s *TokenService) Graduate(ctx context.Context, mint, poolID string, fee float64) (*GraduationResult, error) {
	const op = "graduate token"

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return nil, &ValidationError{Op: op, Field: "raydium_pool_id", Reason: "required"}
	}
	if fee < 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return nil, &ValidationError{Op: op, Field: "graduation_fee", Reason: "must be a non-negative number"}
	}

	token, err := s.getToken(ctx, op, mint)
	if err != nil {
		return nil, err
	}
	if token.GraduationStatus != models.GraduationEligible {
		return nil, notEligible(op, token.MintAddress, token.GraduationStatus)
	}

	now := s.now()
	grad := &models.Graduation{
		MintAddress:             mint,
		GraduationDate:          now,
		MarketCapAtGraduation:   valueOr(token.MarketCap, 0),
		TotalVolumeAtGraduation: token.TotalVolume,
		RaydiumPoolData: models.JSONMap{
			"pool_id":                 poolID,
			"initial_sol_liquidity":   0,
			"initial_token_liquidity": 0,
			"pool_creation_signature": "",
		},
		GraduationFeeCollected: fee,
		Status:                 models.GraduationOutcomeSuccessful,
	}
	pool := models.NewRaydiumPoolPair(mint, poolID, now)

	err = s.store.GraduateToken(ctx, mint, poolID, now, grad, pool)
	switch {
	case errors.Is(err, storage.ErrStaleState):
		current, getErr := s.getToken(ctx, op, mint)
		if getErr != nil {
			return nil, getErr
		}
		return nil, notEligible(op, mint, current.GraduationStatus)
	case errors.Is(err, storage.ErrNotFound):
		return nil, &NotFoundError{Entity: "token", ID: mint, Op: op, Err: err}
	case err != nil:
		return nil, storeError(op, err)
	}

	log.WithFields(log.Fields{"mint": mint, "pool": poolID, "fee": fee}).Info("token graduated")
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warnf("> analytics cache invalidation failed: %v", err)
		}
	}
	metrics.TokenGraduated()
	metrics.StatusTransition(string(models.GraduationEligible), string(models.GraduationGraduated))
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TokenGraduated,
		MintAddress: mint,
		Status:      models.GraduationGraduated,
		Previous:    models.GraduationEligible,
		Data:        grad,
		Timestamp:   now,
	})

	return &GraduationResult{
		Message:       "Token graduated successfully",
		MintAddress:   mint,
		RaydiumPoolID: poolID,
		Graduation:    grad,
	}, nil
}

func notEligible(op, mint string, status models.GraduationStatus) error {
	reason := "token not eligible for graduation"
	if status == models.GraduationGraduated {
		reason = "token already graduated"
	}
	return &InvalidStateError{Entity: "token", ID: mint, Op: op, State: string(status), Reason: reason}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
