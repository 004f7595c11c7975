// Package storagetest holds the behaviour every storage.Store implementation must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/models"
	"launchpad/internal/storage"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newToken(mint string, i int) *models.Token {
	return &models.Token{
		MintAddress:         mint,
		CreatorWallet:       "creator",
		Name:                "Name " + mint,
		Symbol:              "SYM" + mint,
		Description:         "desc",
		TotalSupply:         models.TokenTotalSupply,
		Decimals:            models.TokenDecimals,
		BondingCurveSupply:  models.BondingCurveSupply,
		BurningReserve:      models.BurningReserve,
		HolderCount:         1,
		TransactionsCount:   1,
		GraduationStatus:    models.GraduationPending,
		GraduationThreshold: 69000,
		IsActive:            true,
		CreatedAt:           base.Add(time.Duration(i) * time.Minute),
	}
}

// Run exercises store. newStore must return an empty store per call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("DuplicateMint", func(t *testing.T) { testDuplicateMint(t, newStore(t)) })
	t.Run("ListAndSearch", func(t *testing.T) { testListAndSearch(t, newStore(t)) })
	t.Run("ConditionalUpdate", func(t *testing.T) { testConditionalUpdate(t, newStore(t)) })
	t.Run("Graduate", func(t *testing.T) { testGraduate(t, newStore(t)) })
	t.Run("Verification", func(t *testing.T) { testVerification(t, newStore(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("Images", func(t *testing.T) { testImages(t, newStore(t)) })
	t.Run("Analytics", func(t *testing.T) { testAnalytics(t, newStore(t)) })
}

func testCreateAndGet(t *testing.T, s storage.Store) {
	ctx := context.Background()

	token := newToken("M1", 0)
	require.NoError(t, s.CreateToken(ctx, token, models.NewBondingCurvePair("M1", base)))
	assert.NotZero(t, token.ID)

	got, err := s.GetToken(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, "M1", got.MintAddress)
	assert.Equal(t, models.TokenTotalSupply, got.TotalSupply)
	assert.Equal(t, got.TotalSupply, got.BondingCurveSupply+got.BurningReserve)
	assert.Equal(t, models.GraduationPending, got.GraduationStatus)
	assert.Nil(t, got.MarketCap)
	assert.Nil(t, got.UpdatedAt)
	assert.True(t, got.IsActive)

	_, err = s.GetToken(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	pairs, err := s.ListTradingPairs(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, models.PairBondingCurve, pairs[0].PairType)
	require.NotNil(t, pairs[0].AvailableSupply)
	assert.Equal(t, models.BondingCurveSupply, *pairs[0].AvailableSupply)
}

func testDuplicateMint(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateToken(ctx, newToken("M1", 0), models.NewBondingCurvePair("M1", base)))
	err := s.CreateToken(ctx, newToken("M1", 1), models.NewBondingCurvePair("M1", base))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	n, err := s.CountTokens(ctx, storage.TokenFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pairs, err := s.ListTradingPairs(ctx, "M1")
	require.NoError(t, err)
	assert.Len(t, pairs, 1, "pair insert rolled back with the token")
}

func testListAndSearch(t *testing.T, s storage.Store) {
	ctx := context.Background()
	active := true

	for i := 0; i < 45; i++ {
		mint := fmt.Sprintf("L%02d", i)
		require.NoError(t, s.CreateToken(ctx, newToken(mint, i), nil))
	}
	special := newToken("SPECIAL", 100)
	special.Name = "Moon_Shot 100%"
	special.Symbol = "MoOn"
	require.NoError(t, s.CreateToken(ctx, special, nil))

	tokens, total, err := s.ListTokens(ctx, storage.TokenQuery{
		Filter: storage.TokenFilter{Active: &active},
		SortBy: "created_at",
		Desc:   true,
		Offset: 40,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(46), total)
	require.Len(t, tokens, 6)
	assert.Equal(t, "L05", tokens[0].MintAddress)

	tokens, total, err = s.ListTokens(ctx, storage.TokenQuery{
		Filter: storage.TokenFilter{Active: &active},
		Search: "moon",
		SortBy: "created_at",
		Desc:   true,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, tokens, 1)
	assert.Equal(t, "SPECIAL", tokens[0].MintAddress)

	_, total, err = s.ListTokens(ctx, storage.TokenQuery{Search: "100%", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = s.ListTokens(ctx, storage.TokenQuery{Search: "_", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "underscore is matched literally")

	tokens, _, err = s.ListTokens(ctx, storage.TokenQuery{SortBy: "name", Limit: 2})
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "SPECIAL", tokens[0].MintAddress, "Moon_Shot sorts before Name L00")
	assert.Equal(t, "L00", tokens[1].MintAddress)
}

func testConditionalUpdate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateToken(ctx, newToken("M1", 0), nil))

	mc := 70000.0
	eligible := models.GraduationEligible
	now := base.Add(time.Hour)
	require.NoError(t, s.UpdateToken(ctx, "M1", models.GraduationPending, storage.TokenUpdate{
		MarketCap:        &mc,
		GraduationStatus: &eligible,
		UpdatedAt:        now,
	}))

	got, err := s.GetToken(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, models.GraduationEligible, got.GraduationStatus)
	require.NotNil(t, got.MarketCap)
	assert.Equal(t, mc, *got.MarketCap)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, int64(1), got.HolderCount, "absent fields untouched")

	err = s.UpdateToken(ctx, "M1", models.GraduationPending, storage.TokenUpdate{MarketCap: &mc, UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrStaleState)

	err = s.UpdateToken(ctx, "missing", models.GraduationPending, storage.TokenUpdate{UpdatedAt: now})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testGraduate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateToken(ctx, newToken("M1", 0), models.NewBondingCurvePair("M1", base)))

	at := base.Add(2 * time.Hour)
	grad := func() *models.Graduation {
		return &models.Graduation{
			MintAddress:            "M1",
			GraduationDate:         at,
			MarketCapAtGraduation:  70000,
			RaydiumPoolData:        models.JSONMap{"pool_id": "POOL1"},
			GraduationFeeCollected: 1.5,
			Status:                 models.GraduationOutcomeSuccessful,
		}
	}

	err := s.GraduateToken(ctx, "M1", "POOL1", at, grad(), models.NewRaydiumPoolPair("M1", "POOL1", at))
	assert.ErrorIs(t, err, storage.ErrStaleState, "pending tokens cannot graduate")
	grads, err := s.ListGraduations(ctx, "M1")
	require.NoError(t, err)
	assert.Empty(t, grads)

	eligible := models.GraduationEligible
	require.NoError(t, s.UpdateToken(ctx, "M1", models.GraduationPending, storage.TokenUpdate{GraduationStatus: &eligible, UpdatedAt: at}))

	require.NoError(t, s.GraduateToken(ctx, "M1", "POOL1", at, grad(), models.NewRaydiumPoolPair("M1", "POOL1", at)))

	got, err := s.GetToken(ctx, "M1")
	require.NoError(t, err)
	assert.Equal(t, models.GraduationGraduated, got.GraduationStatus)
	require.NotNil(t, got.RaydiumPoolID)
	assert.Equal(t, "POOL1", *got.RaydiumPoolID)
	require.NotNil(t, got.GraduationDate)
	assert.True(t, at.Equal(*got.GraduationDate))

	grads, err = s.ListGraduations(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, grads, 1)
	assert.Equal(t, "POOL1", grads[0].RaydiumPoolData["pool_id"])
	assert.Equal(t, 1.5, grads[0].GraduationFeeCollected)

	pairs, err := s.ListTradingPairs(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, models.PairRaydiumPool, pairs[1].PairType)

	err = s.GraduateToken(ctx, "M1", "POOL2", at, grad(), nil)
	assert.ErrorIs(t, err, storage.ErrStaleState)
	err = s.GraduateToken(ctx, "missing", "POOL2", at, grad(), nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	grads, err = s.ListGraduations(ctx, "M1")
	require.NoError(t, err)
	assert.Len(t, grads, 1)
}

func testVerification(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateToken(ctx, newToken("A", 0), nil))
	require.NoError(t, s.CreateToken(ctx, newToken("B", 1), nil))

	supply := models.TokenTotalSupply
	decimals := uint8(9)
	owner := "authority"
	at := base.Add(time.Hour)
	require.NoError(t, s.ApplyVerification(ctx, "A", storage.Verification{VerifiedAt: at, Supply: &supply, Decimals: &decimals, Owner: &owner}))

	got, err := s.GetToken(ctx, "A")
	require.NoError(t, err)
	assert.True(t, got.ContractVerified)
	require.NotNil(t, got.VerifiedSupply)
	assert.Equal(t, supply, *got.VerifiedSupply)
	require.NotNil(t, got.VerifiedOwner)
	assert.Equal(t, owner, *got.VerifiedOwner)

	assert.ErrorIs(t, s.ApplyVerification(ctx, "missing", storage.Verification{VerifiedAt: at}), storage.ErrNotFound)

	stale, err := s.ListUnverifiedSince(ctx, at.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "B", stale[0].MintAddress)

	stale, err = s.ListUnverifiedSince(ctx, at.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, stale, 2)
}

func testTransactions(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateToken(ctx, newToken("M1", 0), nil))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.InsertTransaction(ctx, &models.Transaction{
			MintAddress:          "M1",
			TransactionSignature: fmt.Sprintf("sig-%d", i),
			UserWallet:           "w",
			TransactionType:      models.TransactionBuy,
			Timestamp:            base.Add(time.Duration(i) * time.Minute),
		}))
	}
	err := s.InsertTransaction(ctx, &models.Transaction{
		MintAddress:          "M1",
		TransactionSignature: "sig-0",
		UserWallet:           "w",
		TransactionType:      models.TransactionSell,
		Timestamp:            base,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	txs, total, err := s.ListTransactions(ctx, "M1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, txs, 2)
	assert.Equal(t, "sig-4", txs[0].TransactionSignature)
	assert.Equal(t, "sig-3", txs[1].TransactionSignature)

	txs, _, err = s.ListTransactions(ctx, "M1", 4, 2)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "sig-0", txs[0].TransactionSignature)
}

func testImages(t *testing.T, s storage.Store) {
	ctx := context.Background()

	img := &models.Image{URI: "img_abc", Filename: "abc.png", ContentType: "image/png", Size: 10, Hash: "abc", CreatedAt: base}
	require.NoError(t, s.InsertImage(ctx, img))
	assert.ErrorIs(t, s.InsertImage(ctx, &models.Image{URI: "img_abc", Filename: "abc.png", CreatedAt: base}), storage.ErrDuplicateKey)

	got, err := s.GetImage(ctx, "img_abc")
	require.NoError(t, err)
	assert.Equal(t, "abc.png", got.Filename)

	_, err = s.GetImage(ctx, "img_missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testAnalytics(t *testing.T, s storage.Store) {
	ctx := context.Background()
	active := true
	graduated := models.GraduationGraduated

	n, err := s.CountTokens(ctx, storage.TokenFilter{Active: &active})
	require.NoError(t, err)
	assert.Zero(t, n)
	vol, err := s.SumActiveVolume(ctx)
	require.NoError(t, err)
	assert.Zero(t, vol)
	fees, err := s.SumGraduationFees(ctx)
	require.NoError(t, err)
	assert.Zero(t, fees)
	wallets, err := s.CountDistinctWalletsSince(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, wallets)
	daily, err := s.CountTransactionsSince(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, daily)

	require.NoError(t, s.CreateToken(ctx, newToken("A", 0), nil))
	require.NoError(t, s.CreateToken(ctx, newToken("B", 1), nil))
	volume := 12.5
	require.NoError(t, s.UpdateToken(ctx, "A", models.GraduationPending, storage.TokenUpdate{TotalVolume: &volume, UpdatedAt: base}))
	require.NoError(t, s.UpdateToken(ctx, "B", models.GraduationPending, storage.TokenUpdate{TotalVolume: &volume, UpdatedAt: base}))

	for i, w := range []string{"w1", "w2", "w1"} {
		require.NoError(t, s.InsertTransaction(ctx, &models.Transaction{
			MintAddress:          "A",
			TransactionSignature: fmt.Sprintf("s%d", i),
			UserWallet:           w,
			TransactionType:      models.TransactionBuy,
			Timestamp:            base.Add(time.Duration(i) * time.Hour),
		}))
	}

	n, err = s.CountTokens(ctx, storage.TokenFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = s.CountTokens(ctx, storage.TokenFilter{Status: &graduated})
	require.NoError(t, err)
	assert.Zero(t, n)
	vol, err = s.SumActiveVolume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25.0, vol)
	wallets, err = s.CountDistinctWalletsSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(2), wallets)
	daily, err = s.CountTransactionsSince(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), daily)
}
