// Worker consumes moderation events from Kafka, pushes them to Loki and, when DATABASE_URL is
// set, stores them in moderation_events.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL (LOKI_TENANT_ID optional).
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"juribank/backend/internal/config"
	"juribank/backend/internal/db"
	"juribank/backend/internal/telemetry/domain"
	"juribank/backend/internal/telemetry/loki"
	eventrepo "juribank/backend/internal/telemetry/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" && cfg.DatabaseURL == "" {
		log.Fatal("worker: LOKI_URL or DATABASE_URL is required")
	}

	var lokiClient *loki.Client
	if cfg.LokiURL != "" {
		if lokiClient, err = loki.NewClient(cfg.LokiURL, loki.WithTenant(cfg.LokiTenantID)); err != nil {
			log.Fatalf("worker: loki: %v", err)
		}
	}

	var events eventrepo.Repository
	if cfg.DatabaseURL != "" {
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("worker: database: %v", err)
		}
		defer database.Close()
		events = eventrepo.NewPostgresRepository(database)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.TelemetryKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}
		handleMessage(ctx, lokiClient, events, msg.Value)
	}
}

// handleMessage forwards one encoded event. Failures are logged; the message is not retried.
func handleMessage(ctx context.Context, lokiClient *loki.Client, events eventrepo.Repository, raw []byte) {
	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if lokiClient != nil {
		if err := lokiClient.PushEvent(pushCtx, raw); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
	}
	if events == nil {
		return
	}
	var ev domain.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Printf("worker: decode event: %v", err)
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := events.Save(pushCtx, &ev); err != nil {
		log.Printf("worker: store event %s: %v", ev.EventType, err)
	}
}
