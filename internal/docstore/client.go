package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elder-risk-aggregator/internal/config"
)

// Connect establishes a MongoDB client and verifies connectivity with a ping.
// The returned client is shared, read-only state for all concurrent fetches;
// callers own its lifecycle and must Disconnect it on shutdown.
func Connect(ctx context.Context, cfg config.DocstoreConfig) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("docstore.uri is required")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect docstore: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping docstore: %w", err)
	}

	return client, nil
}
