package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/events"
	"launchpad/internal/storage"
	"launchpad/pkg/solana"
)

// SyncResult reports what a chain sync stamped on the token.
type SyncResult struct {
	Message       string              `json:"message"`
	MintAddress   string              `json:"mint_address"`
	Verification  *solana.MintAccount `json:"verification"`
	UpdatedFields []string            `json:"updated_fields"`
	VerifiedAt    time.Time           `json:"verified_at"`
}

// ResyncReport summarizes a batch re-verification.
type ResyncReport struct {
	Checked int      `json:"checked"`
	Synced  int      `json:"synced"`
	Failed  []string `json:"failed"`
}

// SyncFromChain fetches the mint account and records the verification on the token.
// The chain is asked first; a token missing on chain is reported as
// chain_account not found, one missing in the store as token not found.
func (s *TokenService) SyncFromChain(ctx context.Context, mint string) (*SyncResult, error) {
	const op = "sync token"

	if s.chain == nil {
		return nil, chainError(op, errors.New("no chain client configured"))
	}

	account, err := s.chain.GetMintAccount(ctx, mint)
	switch {
	case errors.Is(err, solana.ErrAccountNotFound):
		return nil, &NotFoundError{Entity: "chain_account", ID: mint, Op: op, Err: err}
	case errors.Is(err, solana.ErrInvalidAddress):
		return nil, &ValidationError{Op: op, Field: "mint_address", Reason: "not a base58 public key"}
	case err != nil:
		return nil, chainError(op, err)
	}

	now := s.now()
	v := storage.Verification{
		VerifiedAt: now,
		Supply:     account.Supply,
		Decimals:   account.Decimals,
		Owner:      account.Owner,
	}
	fields := []string{"contract_verified", "last_verified"}
	if v.Supply != nil {
		fields = append(fields, "verified_supply")
	}
	if v.Decimals != nil {
		fields = append(fields, "verified_decimals")
	}
	if v.Owner != nil {
		fields = append(fields, "verified_owner")
	}

	err = s.store.ApplyVerification(ctx, mint, v)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{Entity: "token", ID: mint, Op: op, Err: err}
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	log.WithFields(log.Fields{"mint": mint, "fields": fields}).Info("token synced from chain")
	s.publisher.Publish(ctx, events.Event{
		Type:        events.TokenVerified,
		MintAddress: mint,
		Data:        account,
		Timestamp:   now,
	})

	return &SyncResult{
		Message:       "Token synced successfully",
		MintAddress:   mint,
		Verification:  account,
		UpdatedFields: fields,
		VerifiedAt:    now,
	}, nil
}

// ResyncStale syncs active tokens never verified or verified more than olderThan ago.
// Per-token failures are collected, not returned.
func (s *TokenService) ResyncStale(ctx context.Context, olderThan time.Duration, limit int) (*ResyncReport, error) {
	const op = "resync stale tokens"

	if limit <= 0 {
		limit = 50
	}
	tokens, err := s.store.ListUnverifiedSince(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return nil, storeError(op, err)
	}

	report := &ResyncReport{Checked: len(tokens), Failed: []string{}}
	for _, token := range tokens {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := s.SyncFromChain(ctx, token.MintAddress); err != nil {
			log.WithField("mint", token.MintAddress).Warnf("> resync failed: %v", err)
			report.Failed = append(report.Failed, token.MintAddress)
			continue
		}
		report.Synced++
	}
	return report, nil
}

// ContractVerification is the read-only chain check of a registered token.
type ContractVerification struct {
	MintAddress      string              `json:"mint_address"`
	Verified         bool                `json:"verified"`
	VerificationDate time.Time           `json:"verification_date"`
	Status           string              `json:"status"`
	MetadataAccount  string              `json:"metadata_account,omitempty"`
	Account          *solana.MintAccount `json:"account,omitempty"`
}

// VerifyContract checks the mint account of a registered token without
// recording anything. A mint absent on chain is reported as unverified.
func (s *TokenService) VerifyContract(ctx context.Context, mint string) (*ContractVerification, error) {
	const op = "verify contract"

	if _, err := s.getToken(ctx, op, mint); err != nil {
		return nil, err
	}
	if s.chain == nil {
		return nil, chainError(op, errors.New("no chain client configured"))
	}

	out := &ContractVerification{MintAddress: mint, VerificationDate: s.now()}
	if meta, err := solana.MetadataAddress(mint); err == nil {
		out.MetadataAccount = meta
	}
	account, err := s.chain.GetMintAccount(ctx, mint)
	switch {
	case errors.Is(err, solana.ErrAccountNotFound):
		out.Status = "Mint account not found on Solana blockchain"
		return out, nil
	case errors.Is(err, solana.ErrInvalidAddress):
		out.Status = "Mint address is not a valid Solana public key"
		return out, nil
	case err != nil:
		return nil, chainError(op, err)
	}

	out.Verified = account.Verified
	out.Account = account
	out.Status = "Contract verified on Solana blockchain"
	return out, nil
}
