package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/castlemilk/bizpulse/backend/internal/config"
	"github.com/castlemilk/bizpulse/backend/internal/logger"
)

// Open connects the backend selected by cfg. Reads of the persistent
// backends are retried on transient errors. The returned func releases the
// connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	log := logger.Component("store").WithField("backend", cfg.StoreBackend)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Info("using in-memory store")
		return NewMemoryStore(), func() {}, nil

	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		log.WithField("project", cfg.ProjectID).Info("using Firestore store")
		return NewRetryingStore(NewFirestoreStore(client), DefaultRetryConfig), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		st, err := NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDBName})
		if err != nil {
			return nil, nil, err
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, nil, err
		}
		log.WithField("database", cfg.MongoDBName).Info("using MongoDB store")
		return NewRetryingStore(st, DefaultRetryConfig), func() { _ = st.Close(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
