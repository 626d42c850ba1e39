package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/dmitrymomot/summarist/pkg/logger"
)

// Connect opens a client and pings the primary, retrying up to
// cfg.RetryAttempts times. The returned database is cfg.Database.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	if log == nil {
		log = logger.Discard()
	}

	var lastErr error
	for attempt := 1; attempt <= max(cfg.RetryAttempts, 1); attempt++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return client, client.Database(cfg.Database), nil
			}
			_ = client.Disconnect(context.WithoutCancel(ctx))
		}
		lastErr = err

		log.WarnContext(ctx, "mongo connection attempt failed",
			logger.Component("mongo"),
			slog.Int("attempt", attempt),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, nil, errors.Join(ErrNotReady, lastErr)
}

// Healthcheck pings the primary; it backs the "mongodb" entry of /healthz.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}
