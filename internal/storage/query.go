package storage

import (
	"time"

	"launchpad/internal/models"
)

// SortFields lists the token columns a listing may be ordered by.
var SortFields = []string{
	"created_at",
	"updated_at",
	"market_cap",
	"current_price",
	"total_volume",
	"holder_count",
	"transactions_count",
	"name",
	"symbol",
	"graduation_date",
}

// IsSortField reports whether field is an allowed sort column.
func IsSortField(field string) bool {
	for _, f := range SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// TokenFilter selects tokens by equality. Nil fields are not filtered on.
type TokenFilter struct {
	Active  *bool
	Status  *models.GraduationStatus
	Creator *string
}

// TokenQuery is a filtered, sorted, paginated token lookup.
type TokenQuery struct {
	Filter TokenFilter
	// Search, when set, matches name/symbol/mint/description case-insensitively.
	Search string
	SortBy string
	Desc   bool
	Offset int
	Limit  int
}

// TokenUpdate is a partial token write. Nil fields are left untouched.
type TokenUpdate struct {
	CurrentPrice      *float64
	MarketCap         *float64
	TotalVolume       *float64
	HolderCount       *int64
	TransactionsCount *int64
	ContractVerified  *bool
	LastVerified      *time.Time
	GraduationStatus  *models.GraduationStatus
	UpdatedAt         time.Time
}

// Verification is the chain data stamped by a sync.
type Verification struct {
	VerifiedAt time.Time
	Supply     *uint64
	Decimals   *uint8
	Owner      *string
}
