package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appconfig "github.com/scandoo/scandoo/internal/config"
)

// Connect establishes a MongoDB connection using the provided configuration.
// It applies a small retry strategy to handle transient bootstrapping issues
// (e.g., DB container starting up). The returned client is pinged before
// returning.
func Connect(cfg *appconfig.MongoConfig) (*mongo.Client, error) {
	if cfg == nil {
		return nil, errors.New("nil mongo config")
	}

	// Retry policy: up to 5 attempts, exponential backoff starting at 500ms.
	const (
		maxAttempts = 5
		baseDelay   = 500 * time.Millisecond
	)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			cancel()
			lastErr = err
			sleepWithBackoff(attempt, baseDelay)
			continue
		}

		// Ping with timeout to validate the connection.
		lastErr = client.Ping(ctx, readpref.Primary())
		cancel()
		if lastErr == nil {
			return client, nil
		}

		// Disconnect and retry on ping failure.
		discCtx, discCancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = client.Disconnect(discCtx)
		discCancel()
		sleepWithBackoff(attempt, baseDelay)
	}

	return nil, fmt.Errorf("failed to connect to mongodb after %d attempts: %w", maxAttempts, lastErr)
}

// sleepWithBackoff sleeps for an exponentially increasing duration.
func sleepWithBackoff(attempt int, base time.Duration) {
	// Simple exponential backoff: base * 2^(attempt-1), capped to 5s.
	d := base << (attempt - 1)
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	time.Sleep(d)
}
