package main

import (
	"fmt"
	"log"

	"smartledger/internal/config"
	"smartledger/internal/domain"
	"smartledger/internal/handler"
	"smartledger/internal/ocr/baidu"
	"smartledger/internal/parser/ocrllm"
	"smartledger/internal/parser/qwenvl"
	"smartledger/internal/parser/textllm"
	"smartledger/internal/port"
	"smartledger/internal/repository/postgres"
	"smartledger/internal/router"
	"smartledger/internal/service"
	s3storage "smartledger/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	billRepo := postgres.NewBillRepo(db)

	// Parser backends. The OCR-then-text variant reuses the text parser
	// behind a Baidu OCR front end.
	textParser := textllm.NewParser(&cfg.Parser.Text)
	parsers := map[domain.ParseVariant]port.BillParser{
		domain.VariantQwenVL:    qwenvl.NewParser(&cfg.Parser.Vision),
		domain.VariantBaiduQwen: ocrllm.NewParser(baidu.NewClient(&cfg.OCR), textParser),
		domain.VariantLLM:       textParser,
	}

	// Receipt archival is optional; leave storage nil when no bucket is set.
	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.Auth)
	billSvc := service.NewBillService(billRepo, parsers, storage, cfg.S3)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	billH := handler.NewBillHandler(billSvc, authSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authH, billH, healthH, cfg.Server.AllowedOrigins)

	if cfg.Auth.DebugToken != "" {
		log.Printf("WARNING: auth debug token is enabled; do not run this in production")
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
