package models

import "time"

// TransactionType is the kind of trading event
type TransactionType string

const (
	TransactionBuy    TransactionType = "buy"
	TransactionSell   TransactionType = "sell"
	TransactionCreate TransactionType = "create"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell || t == TransactionCreate
}

// Transaction is an append-only trading event; never updated after insert
type Transaction struct {
	ID                   uint            `gorm:"primarykey" json:"id"`
	MintAddress          string          `gorm:"size:64;not null;index" json:"mint_address"`
	TransactionSignature string          `gorm:"size:128;not null;uniqueIndex:idx_transactions_signature" json:"transaction_signature"`
	UserWallet           string          `gorm:"size:64;not null;index" json:"user_wallet"`
	TransactionType      TransactionType `gorm:"size:10;not null;index" json:"transaction_type"`

	SolAmount     float64 `json:"sol_amount"`
	TokenAmount   uint64  `json:"token_amount"`
	PricePerToken float64 `json:"price_per_token"`

	MarketCapBefore *float64 `json:"market_cap_before"`
	MarketCapAfter  *float64 `json:"market_cap_after"`

	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	BlockHeight *uint64   `json:"block_height"`
}

func (Transaction) TableName() string {
	return "transactions"
}
