package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"launchpad/internal/services"
)

type fakeSyncer struct {
	mints []string
	err   error
}

func (f *fakeSyncer) SyncFromChain(_ context.Context, mint string) (*services.SyncResult, error) {
	f.mints = append(f.mints, mint)
	if f.err != nil {
		return nil, f.err
	}
	return &services.SyncResult{MintAddress: mint, UpdatedFields: []string{"contract_verified"}}, nil
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	created := []byte(`{"type":"token.created","mint_address":"M1","timestamp":"2025-01-01T00:00:00Z"}`)

	f := &fakeSyncer{}
	h := handleEvent(f)
	assert.NoError(t, h(ctx, created))
	assert.NoError(t, h(ctx, []byte(`{"type":"token.updated","mint_address":"M2"}`)))
	assert.NoError(t, h(ctx, []byte(`garbage`)))
	assert.Equal(t, []string{"M1"}, f.mints)

	f.err = &services.NotFoundError{Entity: "chain_account", ID: "M1", Op: "sync token"}
	assert.NoError(t, h(ctx, created))

	f.err = &services.UpstreamError{Service: "chain", Op: "sync token", Err: errors.New("timeout")}
	assert.Error(t, h(ctx, created))
}
