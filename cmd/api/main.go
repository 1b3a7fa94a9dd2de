package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/skillshare/api/internal/application/otp"
	"github.com/skillshare/api/internal/config"
	"github.com/skillshare/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/skillshare/api/internal/infrastructure/jwt"
	"github.com/skillshare/api/internal/infrastructure/mail"
	redisstore "github.com/skillshare/api/internal/infrastructure/redis"
	s3infra "github.com/skillshare/api/internal/infrastructure/s3"
	"github.com/skillshare/api/internal/infrastructure/sns"
	transporthttp "github.com/skillshare/api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Mailer (Resend when configured, SMTP otherwise, log fallback).
	mailer := mail.New(cfg)

	// Marketplace event publisher (optional — no-op without a topic ARN).
	events, err := sns.NewPublisher(cfg)
	if err != nil {
		log.Fatalf("sns publisher: %v", err)
	}

	// One-time code ledger. Backend is selected by OTP_STORE.
	var (
		codeStore   otp.Store
		codeLimiter otp.RateLimiter
	)
	switch cfg.OTPStore {
	case "redis":
		redisClient := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword)
		codeStore = redisstore.NewStore(redisClient)
		codeLimiter = redisstore.NewRateLimiter(redisClient)
	case "dynamo":
		codeStore = dynamo.NewOTPStore(dynamoClient, cfg.DynamoTables.OTP)
		codeLimiter = otp.NewMemoryRateLimiter()
	default:
		codeStore = otp.NewMemoryStore()
		codeLimiter = otp.NewMemoryRateLimiter()
	}
	sender := otp.NewEmailSender(mailer, int(cfg.OTPTTL.Minutes()))
	ledger := otp.NewLedger(codeStore, codeLimiter, sender, otp.Config{
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
		RateLimit:   cfg.OTPRateLimit,
		RateWindow:  cfg.OTPRateWindow,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go ledger.RunSweeper(sweepCtx, cfg.OTPSweepInterval)

	deps := &transporthttp.Deps{
		UserRepo:     dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		CategoryRepo: dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		ProjectRepo:  dynamo.NewProjectRepo(dynamoClient, cfg.DynamoTables.Projects),
		OrderRepo:    dynamo.NewOrderRepo(dynamoClient, cfg.DynamoTables.Orders),
		PaymentRepo:  dynamo.NewPaymentRepo(dynamoClient, cfg.DynamoTables.Payments),
		WalletRepo:   dynamo.NewWalletRepo(dynamoClient, cfg.DynamoTables.Wallets, cfg.DynamoTables.WalletEntries, cfg.DynamoTables.Payments),
		MessageRepo:  dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		ReviewRepo:   dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.Reviews),
		FileRepo:     dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files),
		Ledger:       ledger,
		S3Store:      s3Store,
		Events:       events,
		JWTProvider:  jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweeper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
