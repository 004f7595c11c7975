package models

import (
	"time"
)

// GraduationStatus is the bonding-curve lifecycle state of a token
type GraduationStatus string

const (
	GraduationPending   GraduationStatus = "pending"
	GraduationEligible  GraduationStatus = "eligible"
	GraduationGraduated GraduationStatus = "graduated"
	GraduationFailed    GraduationStatus = "failed"
)

// Valid reports whether s is one of the declared statuses
func (s GraduationStatus) Valid() bool {
	switch s {
	case GraduationPending, GraduationEligible, GraduationGraduated, GraduationFailed:
		return true
	}
	return false
}

// Supply constants shared by every launched token (1B tokens at 9 decimals).
const (
	TokenDecimals      uint8  = 9
	TokenTotalSupply   uint64 = 1_000_000_000_000_000_000
	BondingCurveSupply uint64 = TokenTotalSupply / 10 * 8
	BurningReserve     uint64 = TokenTotalSupply / 10 * 2
)

// Token represents a token launched on the platform, keyed by its mint address
type Token struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	MintAddress   string `gorm:"size:64;not null;uniqueIndex:idx_tokens_mint_address" json:"mint_address"`
	CreatorWallet string `gorm:"size:64;not null;index" json:"creator_wallet"`
	Name          string `gorm:"size:32;not null" json:"name"`
	Symbol        string `gorm:"size:10;not null" json:"symbol"`
	Description   string `gorm:"size:500" json:"description"`
	ImageURI      string `gorm:"size:200" json:"image_uri"`

	TotalSupply        uint64 `gorm:"not null" json:"total_supply"`
	Decimals           uint8  `gorm:"not null" json:"decimals"`
	BondingCurveSupply uint64 `gorm:"not null" json:"bonding_curve_supply"`
	BurningReserve     uint64 `gorm:"not null" json:"burning_reserve"`

	CurrentPrice      *float64 `json:"current_price"`
	MarketCap         *float64 `gorm:"index" json:"market_cap"`
	TotalVolume       float64  `gorm:"default:0" json:"total_volume"`
	HolderCount       int64    `gorm:"default:0" json:"holder_count"`
	TransactionsCount int64    `gorm:"default:0" json:"transactions_count"`

	GraduationStatus    GraduationStatus `gorm:"size:16;not null;index" json:"graduation_status"`
	GraduationThreshold float64          `gorm:"not null" json:"graduation_threshold"`
	GraduationDate      *time.Time       `json:"graduation_date"`
	RaydiumPoolID       *string          `gorm:"size:64" json:"raydium_pool_id"`

	SolanaExplorerURL string `gorm:"size:200" json:"solana_explorer_url"`
	SolscanURL        string `gorm:"size:200" json:"solscan_url"`

	ContractVerified   bool       `gorm:"default:false" json:"contract_verified"`
	LastVerified       *time.Time `json:"last_verified"`
	VerifiedSupply     *uint64    `gorm:"type:numeric(20,0)" json:"verified_supply,omitempty"`
	VerifiedDecimals   *uint8     `json:"verified_decimals,omitempty"`
	VerifiedOwner      *string    `gorm:"size:64" json:"verified_owner,omitempty"`
	BlockHeightCreated *uint64    `json:"block_height_created"`
	CreationSignature  *string    `gorm:"size:128" json:"creation_signature"`

	InitialPurchaseAmount *uint64 `json:"initial_purchase_amount,omitempty"`

	IsActive  bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name
func (Token) TableName() string {
	return "tokens"
}
