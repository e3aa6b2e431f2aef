// Command seed writes the generated demo business into the configured
// persistent store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/castlemilk/bizpulse/backend/internal/config"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"github.com/castlemilk/bizpulse/backend/internal/store"
	"github.com/castlemilk/bizpulse/backend/internal/tenant"
	log "github.com/sirupsen/logrus"
)

func main() {
	account := flag.String("account", store.DemoAccountID, "account id to seed")
	profilePath := flag.String("profile", "", "optional YAML company profile replacing the generated one")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.StoreBackend == config.BackendMemory {
		log.Fatal("seeding needs STORE_BACKEND=firestore or mongo")
	}
	accountID, err := tenant.ExtractAccountID(*account)
	if err != nil {
		log.WithError(err).Fatal("invalid account")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer closeStore()

	seed := store.DemoSeed(accountID, time.Now())
	if *profilePath != "" {
		profile, err := config.LoadProfile(*profilePath)
		if err != nil {
			log.WithError(err).Fatal("failed to load company profile")
		}
		profile.AccountID = accountID
		seed.Profile = *profile
	}

	if err := seed.Load(ctx, st); err != nil {
		log.WithError(err).Fatal("failed to seed")
	}
	log.WithFields(log.Fields{
		"account_id": accountID,
		"revenue":    len(seed.Revenue),
		"invoices":   len(seed.Invoices),
		"cash":       len(seed.Cash),
		"pnl":        len(seed.PnL),
	}).Info("seeded demo account")
}
