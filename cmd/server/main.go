package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"juribank/backend/internal/audit"
	auditrepo "juribank/backend/internal/audit/repository"
	"juribank/backend/internal/config"
	"juribank/backend/internal/db"
	healthhandler "juribank/backend/internal/health/handler"
	"juribank/backend/internal/security"
	"juribank/backend/internal/server"
	"juribank/backend/internal/server/interceptors"
	sessionrepo "juribank/backend/internal/session/repository"
	"juribank/backend/internal/session/service"
	"juribank/backend/internal/telemetry"
	otelsetup "juribank/backend/internal/telemetry/otel"
	"juribank/backend/internal/telemetry/producer"
	eventrepo "juribank/backend/internal/telemetry/repository"
)

const meterName = "juribank/anonsession"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireSessionSecrets(); err != nil {
		log.Fatalf("config: %v", err)
	}
	secret, err := security.LoadSecret(cfg.SessionTokenSecret)
	if err != nil {
		log.Fatalf("session secret: %v", err)
	}
	tokens, err := security.NewTokenCodec(secret, cfg.TokenIssuer, cfg.TokenAudience)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	hasher, err := security.NewHasher(cfg.IPHashSalt)
	if err != nil {
		log.Fatalf("ip hasher: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, otelsetup.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Printf("telemetry: otel disabled: %v", err)
		providers = nil
	}
	if providers != nil {
		providers.SetGlobal()
	}

	var (
		sessions  sessionrepo.Repository = sessionrepo.NewMemoryRepository()
		auditLogs auditrepo.Repository   = auditrepo.NewMemoryRepository()
		pinger    healthhandler.Pinger
		stored    telemetry.EventEmitter
	)
	if cfg.DatabaseURL != "" {
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer database.Close()
		sessions = sessionrepo.NewPostgresRepository(database)
		auditLogs = auditrepo.NewPostgresRepository(database)
		pinger = database
		stored = eventrepo.NewPostgresRepository(database)
		log.Println("sessions: using postgres store")
	} else {
		log.Println("sessions: using in-memory store; sessions are lost on restart")
	}

	var emitters []telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitters = append(emitters, kafkaProducer)
	} else if stored != nil {
		// no worker behind Kafka, so persist moderation events inline
		emitters = append(emitters, stored)
	}
	if providers != nil {
		emitters = append(emitters, otelsetup.NewEventEmitter(providers.LoggerProvider))
	}
	events := telemetry.NewMulti(emitters...)

	registry, err := service.NewRegistry(service.Deps{
		Repo:   sessions,
		Tokens: tokens,
		Hasher: hasher,
		Events: events,
		Meter:  providers.Meter(meterName),
	}, registryConfig(cfg))
	if err != nil {
		log.Fatalf("session registry: %v", err)
	}
	if err := registry.Start(ctx); err != nil {
		log.Fatalf("session sweeps: %v", err)
	}
	defer registry.Stop()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := server.NewGRPCServer(server.Deps{
		Registry:     registry,
		Tokens:       tokens,
		Hasher:       hasher,
		Events:       events,
		AuditLogger:  audit.NewLogger(auditLogs, hasher, interceptors.ClientIP),
		HealthPinger: pinger,
	})

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	registry.Stop()
	log.Println("gRPC server stopped")

	if providers != nil {
		// let in-flight async emits finish before the exporters close
		time.Sleep(telemetry.ShutdownDrainDuration)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
		}
	}
}

func registryConfig(cfg *config.Config) service.Config {
	return service.Config{
		SessionTTL:       cfg.SessionTTL(),
		MaxSessionsPerIP: cfg.MaxSessionsPerIP,
		RateLimitWindow:  cfg.RateLimitWindow(),
		RateLimitMax:     cfg.RateLimitMax,
		SweepInterval:    cfg.SessionSweepInterval(),
		Thresholds: service.Thresholds{
			BanThreshold:               cfg.BanThreshold,
			FingerprintMismatchPenalty: cfg.FingerprintMismatchPenalty,
			RapidPostingMinPosts:       cfg.RapidPostingMinPosts,
			RapidPostingReplyRatio:     cfg.RapidPostingReplyRatio,
			RapidPostingPenalty:        cfg.RapidPostingPenalty,
			HighReportingMinReports:    cfg.HighReportingMinReports,
			HighReportingPenalty:       cfg.HighReportingPenalty,
			ComplianceMaxWarnings:      cfg.ComplianceMaxWarnings,
			ComplianceViolationPenalty: cfg.ComplianceViolationPenalty,
			PostsPerHourLimit:          cfg.PostsPerHourLimit,
			PostingFrequencyPenalty:    cfg.PostingFrequencyPenalty,
			ExcessiveReportingPenalty:  cfg.ExcessiveReportingPenalty,
		},
	}
}
