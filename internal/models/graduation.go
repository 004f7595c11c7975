package models

import "time"

// GraduationOutcome is the result recorded on a graduation row
type GraduationOutcome string

const (
	GraduationOutcomeSuccessful GraduationOutcome = "successful"
	GraduationOutcomeFailed     GraduationOutcome = "failed"
	GraduationOutcomePending    GraduationOutcome = "pending"
)

// Graduation is the append-only audit row written once per successful graduation
type Graduation struct {
	ID                      uint              `gorm:"primarykey" json:"id"`
	MintAddress             string            `gorm:"size:64;not null;index" json:"mint_address"`
	GraduationDate          time.Time         `gorm:"not null;index" json:"graduation_date"`
	MarketCapAtGraduation   float64           `json:"market_cap_at_graduation"`
	TotalVolumeAtGraduation float64           `json:"total_volume_at_graduation"`
	RaydiumPoolData         JSONMap           `gorm:"type:jsonb" json:"raydium_pool_data"`
	GraduationFeeCollected  float64           `json:"graduation_fee_collected"`
	Status                  GraduationOutcome `gorm:"size:16;not null;index" json:"status"`
}

func (Graduation) TableName() string {
	return "graduations"
}
