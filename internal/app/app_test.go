package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/services"
	"launchpad/pkg/config"
)

func TestNewWithSQLite(t *testing.T) {
	dir := t.TempDir()
	s := config.Settings{
		DBDriver:            "sqlite",
		DBSQLitePath:        filepath.Join(dir, "app.db"),
		DBAutoMigrate:       true,
		SolanaRPCURL:        "http://127.0.0.1:1",
		GraduationThreshold: 100,
		UploadDir:           filepath.Join(dir, "images"),
		APIBaseURL:          "http://localhost:8080",
	}

	ctx := context.Background()
	a, err := New(ctx, s)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.AMQP)
	require.NoError(t, a.PingDB(ctx))

	token, err := a.Tokens.CreateToken(ctx, services.CreateTokenRequest{
		MintAddress:   "Mint1",
		Name:          "One",
		Symbol:        "ONE",
		CreatorWallet: "Creator",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, token.GraduationThreshold)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.Settings{DBDriver: "oracle"})
	assert.Error(t, err)
}
