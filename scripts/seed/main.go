package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/app"
	"launchpad/internal/models"
	"launchpad/internal/services"
	"launchpad/pkg/config"
	"launchpad/pkg/solana"
)

var adjectives = []string{"Moon", "Based", "Turbo", "Giga", "Frog", "Laser", "Cosmic", "Sleepy"}
var nouns = []string{"Cat", "Dog", "Pepe", "Rocket", "Whale", "Banana", "Wizard", "Duck"}

func main() {
	count := flag.Int("n", 20, "number of tokens to create")
	trades := flag.Int("trades", 5, "transactions recorded per token")
	graduate := flag.Float64("graduate", 0.2, "fraction of tokens pushed past the threshold and graduated")
	flag.Parse()

	settings := config.Load()
	config.SetupLogger(settings)
	ctx := context.Background()

	a, err := app.New(ctx, settings)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	creators := solana.NewAddresses(3)
	wallets := solana.NewAddresses(10)

	created, graduated := 0, 0
	for _, mint := range solana.NewAddresses(*count) {
		name := fmt.Sprintf("%s %s", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))])
		if _, err := a.Tokens.CreateToken(ctx, services.CreateTokenRequest{
			MintAddress:   mint,
			Name:          name,
			Symbol:        fmt.Sprintf("%.4s", mint),
			Description:   "Seeded demo token",
			CreatorWallet: creators[rng.Intn(len(creators))],
		}); err != nil {
			log.Errorf("> create %s: %v", mint, err)
			continue
		}
		created++

		volume := 0.0
		for i := 0; i < *trades; i++ {
			sol := 0.1 + rng.Float64()*5
			volume += sol
			kind := models.TransactionBuy
			if rng.Intn(3) == 0 {
				kind = models.TransactionSell
			}
			if _, err := a.Tokens.RecordTransaction(ctx, mint, services.RecordTransactionRequest{
				TransactionSignature: solana.NewAddress() + solana.NewAddress(),
				UserWallet:           wallets[rng.Intn(len(wallets))],
				TransactionType:      kind,
				SolAmount:            sol,
				TokenAmount:          uint64(sol * 1e6),
				PricePerToken:        sol / 1e6,
			}); err != nil {
				log.Errorf("> record trade on %s: %v", mint, err)
			}
		}

		marketCap := rng.Float64() * settings.GraduationThreshold
		if rng.Float64() < *graduate {
			marketCap = settings.GraduationThreshold * (1 + rng.Float64())
		}
		price := marketCap / 1e9
		holders := int64(1 + rng.Intn(500))
		token, err := a.Tokens.UpdateMetrics(ctx, mint, services.UpdateMetricsRequest{
			CurrentPrice: &price,
			MarketCap:    &marketCap,
			TotalVolume:  &volume,
			HolderCount:  &holders,
		})
		if err != nil {
			log.Errorf("> update %s: %v", mint, err)
			continue
		}
		if token.GraduationStatus == models.GraduationEligible {
			if _, err := a.Tokens.Graduate(ctx, mint, solana.NewAddress(), 0.5); err != nil {
				log.Errorf("> graduate %s: %v", mint, err)
				continue
			}
			graduated++
		}
	}

	log.Infof("seeded %d tokens, %d graduated", created, graduated)
}
