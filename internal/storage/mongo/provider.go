package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tmforum-oda/reference-example-components/internal/storage"
	storagecfg "github.com/tmforum-oda/reference-example-components/internal/storage/config"
)

type provider struct {
	store storage.Store
}

// NewProvider establishes the MongoDB connection and returns an owned
// provider. The connection is verified with a ping before use; callers
// inject the provider instead of sharing a global handle.
func NewProvider(ctx context.Context, cfg storagecfg.MongoConfig) (storage.Provider, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI())
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(cfg.Database)
	return &provider{store: NewStore(client, db)}, nil
}

func (p *provider) Store() storage.Store {
	return p.store
}

func (p *provider) Close(ctx context.Context) error {
	return p.store.Close(ctx)
}
