package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"launchpad/internal/models"
	"launchpad/internal/storage"
)

// Store implements storage.Store on top of gorm (postgres in production, sqlite in tests).
// The *gorm.DB must be opened with TranslateError enabled so unique violations surface
// as gorm.ErrDuplicatedKey.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the tables of every entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Token{},
		&models.TradingPair{},
		&models.Graduation{},
		&models.Transaction{},
		&models.Image{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicateKey
	}
	return err
}

// CreateToken inserts the token and its bonding curve pair in one transaction.
func (s *Store) CreateToken(ctx context.Context, token *models.Token, pair *models.TradingPair) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(token).Error; err != nil {
			return err
		}
		if pair == nil {
			return nil
		}
		return tx.Create(pair).Error
	}))
}

// GetToken returns the token by mint address.
func (s *Store) GetToken(ctx context.Context, mint string) (*models.Token, error) {
	var token models.Token
	if err := s.db.WithContext(ctx).Where("mint_address = ?", mint).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func applyFilter(db *gorm.DB, f storage.TokenFilter) *gorm.DB {
	if f.Active != nil {
		db = db.Where("is_active = ?", *f.Active)
	}
	if f.Status != nil {
		db = db.Where("graduation_status = ?", *f.Status)
	}
	if f.Creator != nil {
		db = db.Where("creator_wallet = ?", *f.Creator)
	}
	return db
}

// escapeLike escapes LIKE wildcards so the query is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListTokens returns one page of tokens matching q and the total count.
func (s *Store) ListTokens(ctx context.Context, q storage.TokenQuery) ([]models.Token, int64, error) {
	query := func() *gorm.DB {
		db := applyFilter(s.db.WithContext(ctx).Model(&models.Token{}), q.Filter)
		if q.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
			db = db.Where(
				`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(symbol) LIKE ? ESCAPE '\' OR LOWER(mint_address) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern, pattern,
			)
		}
		return db
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tokens: %w", err)
	}

	sortBy := q.SortBy
	if !storage.IsSortField(sortBy) {
		sortBy = "created_at"
	}

	tokens := []models.Token{}
	err := query().
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&tokens).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, total, nil
}

// missingOrStale tells apart a vanished row from one whose status moved.
func missingOrStale(tx *gorm.DB, mint string) error {
	var n int64
	if err := tx.Model(&models.Token{}).Where("mint_address = ?", mint).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return storage.ErrStaleState
}

// UpdateToken applies u guarded by the expected graduation status.
func (s *Store) UpdateToken(ctx context.Context, mint string, expected models.GraduationStatus, u storage.TokenUpdate) error {
	updates := map[string]interface{}{
		"updated_at": u.UpdatedAt,
	}
	if u.CurrentPrice != nil {
		updates["current_price"] = *u.CurrentPrice
	}
	if u.MarketCap != nil {
		updates["market_cap"] = *u.MarketCap
	}
	if u.TotalVolume != nil {
		updates["total_volume"] = *u.TotalVolume
	}
	if u.HolderCount != nil {
		updates["holder_count"] = *u.HolderCount
	}
	if u.TransactionsCount != nil {
		updates["transactions_count"] = *u.TransactionsCount
	}
	if u.ContractVerified != nil {
		updates["contract_verified"] = *u.ContractVerified
	}
	if u.LastVerified != nil {
		updates["last_verified"] = *u.LastVerified
	}
	if u.GraduationStatus != nil {
		updates["graduation_status"] = *u.GraduationStatus
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&models.Token{}).
		Where("mint_address = ? AND graduation_status = ?", mint, expected).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update token %s: %w", mint, res.Error)
	}
	if res.RowsAffected == 0 {
		return missingOrStale(db, mint)
	}
	return nil
}

// GraduateToken flips an eligible token and appends the graduation record and pool pair.
func (s *Store) GraduateToken(ctx context.Context, mint string, poolID string, at time.Time, grad *models.Graduation, pool *models.TradingPair) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Token{}).
			Where("mint_address = ? AND graduation_status = ?", mint, models.GraduationEligible).
			Updates(map[string]interface{}{
				"graduation_status": models.GraduationGraduated,
				"graduation_date":   at,
				"raydium_pool_id":   poolID,
				"updated_at":        at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrStale(tx, mint)
		}
		if err := tx.Create(grad).Error; err != nil {
			return err
		}
		if pool == nil {
			return nil
		}
		return tx.Create(pool).Error
	}))
}

// ApplyVerification stamps chain verification data.
func (s *Store) ApplyVerification(ctx context.Context, mint string, v storage.Verification) error {
	updates := map[string]interface{}{
		"contract_verified": true,
		"last_verified":     v.VerifiedAt,
	}
	if v.Supply != nil {
		updates["verified_supply"] = *v.Supply
	}
	if v.Decimals != nil {
		updates["verified_decimals"] = *v.Decimals
	}
	if v.Owner != nil {
		updates["verified_owner"] = *v.Owner
	}

	res := s.db.WithContext(ctx).Model(&models.Token{}).Where("mint_address = ?", mint).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("apply verification %s: %w", mint, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTradingPairs returns the pairs of a token, oldest first.
func (s *Store) ListTradingPairs(ctx context.Context, mint string) ([]models.TradingPair, error) {
	pairs := []models.TradingPair{}
	err := s.db.WithContext(ctx).Where("mint_address = ?", mint).Order("id ASC").Find(&pairs).Error
	return pairs, err
}

// ListUnverifiedSince returns active tokens never verified or verified before cutoff.
func (s *Store) ListUnverifiedSince(ctx context.Context, cutoff time.Time, limit int) ([]models.Token, error) {
	var tokens []models.Token
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(last_verified IS NULL OR last_verified < ?)", cutoff).
		Order("id ASC").
		Limit(limit).
		Find(&tokens).Error
	return tokens, err
}

// InsertTransaction appends tx to the log.
func (s *Store) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(tx).Error)
}

// ListTransactions returns a page of a token's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, mint string, offset, limit int) ([]models.Transaction, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("mint_address = ?", mint).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	txs := []models.Transaction{}
	err := s.db.WithContext(ctx).
		Where("mint_address = ?", mint).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Offset(offset).
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

// ListGraduations returns the graduation records of a token.
func (s *Store) ListGraduations(ctx context.Context, mint string) ([]models.Graduation, error) {
	grads := []models.Graduation{}
	err := s.db.WithContext(ctx).Where("mint_address = ?", mint).Order("graduation_date DESC").Find(&grads).Error
	return grads, err
}

// InsertImage adds an image metadata row.
func (s *Store) InsertImage(ctx context.Context, img *models.Image) error {
	return translate(s.db.WithContext(ctx).Create(img).Error)
}

// GetImage returns an image by uri.
func (s *Store) GetImage(ctx context.Context, uri string) (*models.Image, error) {
	var img models.Image
	if err := s.db.WithContext(ctx).Where("uri = ?", uri).First(&img).Error; err != nil {
		return nil, translate(err)
	}
	return &img, nil
}

// CountTokens counts tokens matching f.
func (s *Store) CountTokens(ctx context.Context, f storage.TokenFilter) (int64, error) {
	var n int64
	err := applyFilter(s.db.WithContext(ctx).Model(&models.Token{}), f).Count(&n).Error
	return n, err
}

// SumActiveVolume sums total_volume over active tokens.
func (s *Store) SumActiveVolume(ctx context.Context) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).Model(&models.Token{}).
		Where("is_active = ?", true).
		Select("COALESCE(SUM(total_volume), 0)").
		Scan(&sum).Error
	return sum, err
}

func sinceClause(since time.Time) clause.Expression {
	return clause.Gte{Column: clause.Column{Name: "timestamp"}, Value: since}
}

// CountTransactionsSince counts transactions at or after since.
func (s *Store) CountTransactionsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).Where(sinceClause(since)).Count(&n).Error
	return n, err
}

// CountDistinctWalletsSince counts wallets with a transaction at or after since.
func (s *Store) CountDistinctWalletsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where(sinceClause(since)).
		Distinct("user_wallet").
		Count(&n).Error
	return n, err
}

// SumGraduationFees sums graduation_fee_collected over all graduation records.
func (s *Store) SumGraduationFees(ctx context.Context) (float64, error) {
	var sum float64
	err := s.db.WithContext(ctx).Model(&models.Graduation{}).
		Select("COALESCE(SUM(graduation_fee_collected), 0)").
		Scan(&sum).Error
	return sum, err
}

var _ storage.Store = (*Store)(nil)
