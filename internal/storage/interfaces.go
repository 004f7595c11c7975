package storage

import (
	"context"
	"time"

	"launchpad/internal/models"
)

// TokenStore provides access to tokens and their trading pairs.
type TokenStore interface {
	// CreateToken inserts the token and its initial pair atomically.
	// Returns ErrDuplicateKey if the mint address exists.
	CreateToken(ctx context.Context, token *models.Token, pair *models.TradingPair) error

	// GetToken returns the token by mint address. Returns ErrNotFound if absent.
	GetToken(ctx context.Context, mint string) (*models.Token, error)

	// ListTokens returns one page of tokens matching q and the total match count.
	ListTokens(ctx context.Context, q TokenQuery) ([]models.Token, int64, error)

	// UpdateToken applies u only while the token still has status expected.
	// Returns ErrNotFound if the token is absent, ErrStaleState if its status moved.
	UpdateToken(ctx context.Context, mint string, expected models.GraduationStatus, u TokenUpdate) error

	// GraduateToken flips an eligible token to graduated and appends the graduation
	// record and pool pair in one transaction. Returns ErrStaleState if the token is
	// not eligible anymore; nothing is written in that case.
	GraduateToken(ctx context.Context, mint string, poolID string, at time.Time, grad *models.Graduation, pool *models.TradingPair) error

	// ApplyVerification stamps chain verification data. Returns ErrNotFound if absent.
	ApplyVerification(ctx context.Context, mint string, v Verification) error

	// ListTradingPairs returns all pairs of a token, oldest first.
	ListTradingPairs(ctx context.Context, mint string) ([]models.TradingPair, error)

	// ListUnverifiedSince returns active tokens never verified or last verified before cutoff.
	ListUnverifiedSince(ctx context.Context, cutoff time.Time, limit int) ([]models.Token, error)
}

// TransactionStore provides access to the append-only transaction log.
type TransactionStore interface {
	// InsertTransaction appends tx. Returns ErrDuplicateKey if the signature exists.
	InsertTransaction(ctx context.Context, tx *models.Transaction) error

	// ListTransactions returns one page of a token's transactions, newest first.
	ListTransactions(ctx context.Context, mint string, offset, limit int) ([]models.Transaction, int64, error)
}

// GraduationStore provides read access to graduation records.
type GraduationStore interface {
	ListGraduations(ctx context.Context, mint string) ([]models.Graduation, error)
}

// ImageStore provides access to image metadata rows.
type ImageStore interface {
	// InsertImage adds img. Returns ErrDuplicateKey if the uri exists.
	InsertImage(ctx context.Context, img *models.Image) error

	// GetImage returns the image by uri. Returns ErrNotFound if absent.
	GetImage(ctx context.Context, uri string) (*models.Image, error)
}

// AnalyticsStore exposes the aggregation primitives behind platform analytics.
// Every method returns zero on empty collections.
type AnalyticsStore interface {
	CountTokens(ctx context.Context, f TokenFilter) (int64, error)
	SumActiveVolume(ctx context.Context) (float64, error)
	CountTransactionsSince(ctx context.Context, since time.Time) (int64, error)
	CountDistinctWalletsSince(ctx context.Context, since time.Time) (int64, error)
	SumGraduationFees(ctx context.Context) (float64, error)
}

// Store is the full document store used by the API.
type Store interface {
	TokenStore
	TransactionStore
	GraduationStore
	ImageStore
	AnalyticsStore
}
