package main

import (
	"fmt"
	"os"

	"github.com/nurpe/contractor-billing/internal/auth"
	"github.com/nurpe/contractor-billing/internal/config"
	"github.com/nurpe/contractor-billing/internal/db"
	"github.com/nurpe/contractor-billing/internal/excel"
	httphandler "github.com/nurpe/contractor-billing/internal/http"
	"github.com/nurpe/contractor-billing/internal/http/middleware"
	"github.com/nurpe/contractor-billing/internal/logger"
	"github.com/nurpe/contractor-billing/internal/pdf"
	"github.com/nurpe/contractor-billing/internal/repository"
	"github.com/nurpe/contractor-billing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	profileRepo := repository.NewProfileRepository(database)
	contractRepo := repository.NewContractRepository(database)
	ledgerRepo := repository.NewLedgerRepository(database)
	reportRepo := repository.NewReportRepository(database)

	contractService := service.NewContractService(contractRepo, pdf.NewGenerator())
	ledgerService := service.NewLedgerService(ledgerRepo, cfg)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	profileMiddleware := middleware.ResolveProfile(tokenParser, profileRepo)

	handler := httphandler.NewHandler(
		contractService,
		ledgerService,
		reportService,
		cfg.Billing.BestClientsLimit,
		log,
	)
	router := httphandler.NewRouter(handler, profileMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
