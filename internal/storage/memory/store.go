package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"launchpad/internal/models"
	"launchpad/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu           sync.RWMutex
	nextID       uint
	tokens       map[string]*models.Token // keyed by mint address
	pairs        []models.TradingPair
	graduations  []models.Graduation
	transactions []models.Transaction
	signatures   map[string]struct{}
	images       map[string]*models.Image // keyed by uri
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		tokens:     make(map[string]*models.Token),
		signatures: make(map[string]struct{}),
		images:     make(map[string]*models.Image),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

// CreateToken inserts the token and its initial pair. Returns ErrDuplicateKey if the mint exists.
func (s *Store) CreateToken(_ context.Context, token *models.Token, pair *models.TradingPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tokens[token.MintAddress]; exists {
		return storage.ErrDuplicateKey
	}

	token.ID = s.id()
	tokenCopy := *token
	s.tokens[token.MintAddress] = &tokenCopy

	if pair != nil {
		pair.ID = s.id()
		s.pairs = append(s.pairs, *pair)
	}
	return nil
}

// GetToken returns a copy of the token. Returns ErrNotFound if absent.
func (s *Store) GetToken(_ context.Context, mint string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tokens[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	tokenCopy := *t
	return &tokenCopy, nil
}

// ListTokens filters, sorts and pages the tokens.
func (s *Store) ListTokens(_ context.Context, q storage.TokenQuery) ([]models.Token, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Token
	for _, t := range s.tokens {
		if !matchFilter(t, q.Filter) || !matchSearch(t, q.Search) {
			continue
		}
		matched = append(matched, *t)
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareTokens(&matched[i], &matched[j], sortBy)
		if c == 0 {
			// deterministic tie-break on insertion order
			c = compareUint(matched[i].ID, matched[j].ID)
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	if q.Offset < 0 || q.Offset >= len(matched) {
		return []models.Token{}, total, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-q.Offset {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

// UpdateToken applies u while the token still has status expected.
func (s *Store) UpdateToken(_ context.Context, mint string, expected models.GraduationStatus, u storage.TokenUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tokens[mint]
	if !exists {
		return storage.ErrNotFound
	}
	if t.GraduationStatus != expected {
		return storage.ErrStaleState
	}

	if u.CurrentPrice != nil {
		v := *u.CurrentPrice
		t.CurrentPrice = &v
	}
	if u.MarketCap != nil {
		v := *u.MarketCap
		t.MarketCap = &v
	}
	if u.TotalVolume != nil {
		t.TotalVolume = *u.TotalVolume
	}
	if u.HolderCount != nil {
		t.HolderCount = *u.HolderCount
	}
	if u.TransactionsCount != nil {
		t.TransactionsCount = *u.TransactionsCount
	}
	if u.ContractVerified != nil {
		t.ContractVerified = *u.ContractVerified
	}
	if u.LastVerified != nil {
		v := *u.LastVerified
		t.LastVerified = &v
	}
	if u.GraduationStatus != nil {
		t.GraduationStatus = *u.GraduationStatus
	}
	updatedAt := u.UpdatedAt
	t.UpdatedAt = &updatedAt
	return nil
}

// GraduateToken flips an eligible token to graduated and appends its records.
func (s *Store) GraduateToken(_ context.Context, mint string, poolID string, at time.Time, grad *models.Graduation, pool *models.TradingPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tokens[mint]
	if !exists {
		return storage.ErrNotFound
	}
	if t.GraduationStatus != models.GraduationEligible {
		return storage.ErrStaleState
	}

	pid := poolID
	date := at
	t.GraduationStatus = models.GraduationGraduated
	t.GraduationDate = &date
	t.RaydiumPoolID = &pid
	t.UpdatedAt = &date

	grad.ID = s.id()
	s.graduations = append(s.graduations, *grad)
	if pool != nil {
		pool.ID = s.id()
		s.pairs = append(s.pairs, *pool)
	}
	return nil
}

// ApplyVerification stamps chain verification data.
func (s *Store) ApplyVerification(_ context.Context, mint string, v storage.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tokens[mint]
	if !exists {
		return storage.ErrNotFound
	}
	at := v.VerifiedAt
	t.ContractVerified = true
	t.LastVerified = &at
	if v.Supply != nil {
		supply := *v.Supply
		t.VerifiedSupply = &supply
	}
	if v.Decimals != nil {
		decimals := *v.Decimals
		t.VerifiedDecimals = &decimals
	}
	if v.Owner != nil {
		owner := *v.Owner
		t.VerifiedOwner = &owner
	}
	return nil
}

// ListTradingPairs returns the pairs of mint in insertion order.
func (s *Store) ListTradingPairs(_ context.Context, mint string) ([]models.TradingPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.TradingPair{}
	for _, p := range s.pairs {
		if p.MintAddress == mint {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListUnverifiedSince returns active tokens never verified or verified before cutoff.
func (s *Store) ListUnverifiedSince(_ context.Context, cutoff time.Time, limit int) ([]models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Token
	for _, t := range s.tokens {
		if !t.IsActive {
			continue
		}
		if t.LastVerified == nil || t.LastVerified.Before(cutoff) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InsertTransaction appends tx. Returns ErrDuplicateKey on a known signature.
func (s *Store) InsertTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.signatures[tx.TransactionSignature]; exists {
		return storage.ErrDuplicateKey
	}
	tx.ID = s.id()
	s.signatures[tx.TransactionSignature] = struct{}{}
	s.transactions = append(s.transactions, *tx)
	return nil
}

// ListTransactions returns a page of a token's transactions, newest first.
func (s *Store) ListTransactions(_ context.Context, mint string, offset, limit int) ([]models.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Transaction
	for _, tx := range s.transactions {
		if tx.MintAddress == mint {
			matched = append(matched, tx)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := int64(len(matched))
	if offset < 0 || offset >= len(matched) {
		return []models.Transaction{}, total, nil
	}
	end := len(matched)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// ListGraduations returns the graduation records of mint.
func (s *Store) ListGraduations(_ context.Context, mint string) ([]models.Graduation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Graduation{}
	for _, g := range s.graduations {
		if g.MintAddress == mint {
			out = append(out, g)
		}
	}
	return out, nil
}

// InsertImage adds img. Returns ErrDuplicateKey if the uri exists.
func (s *Store) InsertImage(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.images[img.URI]; exists {
		return storage.ErrDuplicateKey
	}
	img.ID = s.id()
	imgCopy := *img
	s.images[img.URI] = &imgCopy
	return nil
}

// GetImage returns the image by uri.
func (s *Store) GetImage(_ context.Context, uri string) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, exists := s.images[uri]
	if !exists {
		return nil, storage.ErrNotFound
	}
	imgCopy := *img
	return &imgCopy, nil
}

// CountTokens counts tokens matching f.
func (s *Store) CountTokens(_ context.Context, f storage.TokenFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, t := range s.tokens {
		if matchFilter(t, f) {
			n++
		}
	}
	return n, nil
}

// SumActiveVolume sums total volume over active tokens.
func (s *Store) SumActiveVolume(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, t := range s.tokens {
		if t.IsActive {
			sum += t.TotalVolume
		}
	}
	return sum, nil
}

// CountTransactionsSince counts transactions at or after since.
func (s *Store) CountTransactionsSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, tx := range s.transactions {
		if !tx.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

// CountDistinctWalletsSince counts wallets with a transaction at or after since.
func (s *Store) CountDistinctWalletsSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make(map[string]struct{})
	for _, tx := range s.transactions {
		if !tx.Timestamp.Before(since) {
			wallets[tx.UserWallet] = struct{}{}
		}
	}
	return int64(len(wallets)), nil
}

// SumGraduationFees sums collected fees over all graduation records.
func (s *Store) SumGraduationFees(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, g := range s.graduations {
		sum += g.GraduationFeeCollected
	}
	return sum, nil
}

func matchFilter(t *models.Token, f storage.TokenFilter) bool {
	if f.Active != nil && t.IsActive != *f.Active {
		return false
	}
	if f.Status != nil && t.GraduationStatus != *f.Status {
		return false
	}
	if f.Creator != nil && t.CreatorWallet != *f.Creator {
		return false
	}
	return true
}

func matchSearch(t *models.Token, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{t.Name, t.Symbol, t.MintAddress, t.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func compareTokens(a, b *models.Token, field string) int {
	switch field {
	case "updated_at":
		return compareTimePtr(a.UpdatedAt, b.UpdatedAt)
	case "market_cap":
		return compareFloatPtr(a.MarketCap, b.MarketCap)
	case "current_price":
		return compareFloatPtr(a.CurrentPrice, b.CurrentPrice)
	case "total_volume":
		return compareFloat(a.TotalVolume, b.TotalVolume)
	case "holder_count":
		return compareInt(a.HolderCount, b.HolderCount)
	case "transactions_count":
		return compareInt(a.TransactionsCount, b.TransactionsCount)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "symbol":
		return strings.Compare(a.Symbol, b.Symbol)
	case "graduation_date":
		return compareTimePtr(a.GraduationDate, b.GraduationDate)
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// nil sorts before any value, as NULLS FIRST in ascending order
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareTime(*a, *b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareFloat(*a, *b)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUint(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var _ storage.Store = (*Store)(nil)
