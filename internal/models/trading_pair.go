package models

import "time"

// PairType identifies the market a trading pair belongs to
type PairType string

const (
	PairBondingCurve PairType = "bonding_curve"
	PairRaydiumPool  PairType = "raydium_pool"
)

// Bonding curve parameters written on every new pair. The formula is descriptive only.
const (
	BondingCurveBasePrice = 0.000004
	BondingCurveFormula   = "Price = Base_Price × (Total_Supply_Sold / Available_Supply)^2"
)

// TradingPair is the market record of a token: one bonding curve from creation,
// plus a raydium pool once the token graduates
type TradingPair struct {
	ID          uint     `gorm:"primarykey" json:"id"`
	MintAddress string   `gorm:"size:64;not null;index" json:"mint_address"`
	PairType    PairType `gorm:"size:20;not null;index" json:"pair_type"`

	BasePrice       *float64 `json:"base_price"`
	CurrentSold     *uint64  `json:"current_sold"`
	AvailableSupply *uint64  `json:"available_supply"`
	PriceFormula    *string  `gorm:"size:128" json:"price_formula"`
	CurveAddress    *string  `gorm:"size:64" json:"curve_address"`

	PoolID         *string  `gorm:"size:64;index" json:"pool_id"`
	LiquiditySol   *float64 `json:"liquidity_sol"`
	LiquidityToken *uint64  `json:"liquidity_token"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (TradingPair) TableName() string {
	return "trading_pairs"
}

// NewBondingCurvePair builds the initial pair for a freshly created token
func NewBondingCurvePair(mint string, now time.Time) *TradingPair {
	basePrice := BondingCurveBasePrice
	sold := uint64(0)
	available := BondingCurveSupply
	formula := BondingCurveFormula
	return &TradingPair{
		MintAddress:     mint,
		PairType:        PairBondingCurve,
		BasePrice:       &basePrice,
		CurrentSold:     &sold,
		AvailableSupply: &available,
		PriceFormula:    &formula,
		CreatedAt:       now,
	}
}

// NewRaydiumPoolPair builds the pool pair added at graduation
func NewRaydiumPoolPair(mint, poolID string, now time.Time) *TradingPair {
	pool := poolID
	return &TradingPair{
		MintAddress: mint,
		PairType:    PairRaydiumPool,
		PoolID:      &pool,
		CreatedAt:   now,
	}
}
