package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/bizpulse/backend/internal/config"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
	"github.com/castlemilk/bizpulse/backend/internal/service"
	"github.com/castlemilk/bizpulse/backend/internal/store"
	"github.com/castlemilk/bizpulse/backend/internal/tenant"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	storeImpl, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer closeStore()

	// Local mode serves a generated demo business.
	if mem, ok := storeImpl.(*store.MemoryStore); ok {
		if err := store.DemoSeed(cfg.DefaultAccount, time.Now()).Load(ctx, mem); err != nil {
			log.WithError(err).Fatal("failed to seed demo data")
		}
		log.WithField("account_id", cfg.DefaultAccount).Info("seeded demo account")
	}

	opts := []service.Option{service.WithFetchTimeout(cfg.FetchTimeout)}
	if cfg.CompanyProfilePath != "" {
		profile, err := config.LoadProfile(cfg.CompanyProfilePath)
		if err != nil {
			log.WithError(err).Fatal("failed to load company profile")
		}
		opts = append(opts, service.WithDefaultProfile(*profile))
	}
	advisorService := service.NewAdvisorService(storeImpl, opts...)

	path, handler := service.NewAdvisorServiceHandler(
		advisorService,
		connect.WithInterceptors(tenant.AccountInterceptor(cfg.DefaultAccount)),
	)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"Grpc-Timeout",
			"User-Agent",
			"X-Grpc-Web",
			"X-User-Agent",
			tenant.AccountHeader,
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
			"Grpc-Status-Details-Bin",
		},
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}

	log.WithFields(log.Fields{
		"port":    cfg.Port,
		"backend": cfg.StoreBackend,
	}).Info("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
