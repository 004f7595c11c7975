package models

// PlatformAnalytics aggregates platform-wide activity
type PlatformAnalytics struct {
	TotalTokensCreated int64   `json:"total_tokens_created"`
	ActiveTraders      int64   `json:"active_traders"`
	GraduatedTokens    int64   `json:"graduated_tokens"`
	TotalTradingVolume float64 `json:"total_trading_volume"`
	DailyTransactions  int64   `json:"daily_transactions"`
	PlatformRevenue    float64 `json:"platform_revenue"`
}
