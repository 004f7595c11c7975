package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/storage"
)

// AnalyticsWindow is the look-back of the "active" and "daily" figures.
const AnalyticsWindow = 24 * time.Hour

// GetPlatformAnalytics aggregates platform-wide figures. Every figure is zero on an empty store.
func (s *TokenService) GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error) {
	const op = "platform analytics"

	if s.cache != nil {
		cached, err := s.cache.GetAnalytics(ctx)
		if err != nil {
			log.Warnf("> analytics cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	graduated := models.GraduationGraduated
	since := s.now().Add(-AnalyticsWindow)
	out := &models.PlatformAnalytics{}

	var err error
	if out.TotalTokensCreated, err = s.store.CountTokens(ctx, storage.TokenFilter{Active: boolPtr(true)}); err != nil {
		return nil, storeError(op, err)
	}
	if out.GraduatedTokens, err = s.store.CountTokens(ctx, storage.TokenFilter{Status: &graduated}); err != nil {
		return nil, storeError(op, err)
	}
	if out.TotalTradingVolume, err = s.store.SumActiveVolume(ctx); err != nil {
		return nil, storeError(op, err)
	}
	if out.ActiveTraders, err = s.store.CountDistinctWalletsSince(ctx, since); err != nil {
		return nil, storeError(op, err)
	}
	if out.DailyTransactions, err = s.store.CountTransactionsSince(ctx, since); err != nil {
		return nil, storeError(op, err)
	}
	if out.PlatformRevenue, err = s.store.SumGraduationFees(ctx); err != nil {
		return nil, storeError(op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetAnalytics(ctx, out); err != nil {
			log.Warnf("> analytics cache write failed: %v", err)
		}
	}
	return out, nil
}
