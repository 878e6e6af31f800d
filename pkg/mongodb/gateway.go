package mongodb

import (
	"context"
	"fmt"

	"finease/pkg/config"
	"finease/pkg/store"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Gateway hands out the configured collection over one cached client.
type Gateway struct {
	client     *store.Lazy[*mongo.Client]
	database   string
	collection string
	logger     *zap.Logger
}

func NewGateway(mongoCfg *config.MongoConfig, storeCfg *config.StoreConfig, logger *zap.Logger) *Gateway {
	g := &Gateway{
		database:   mongoCfg.Database,
		collection: mongoCfg.Collection,
		logger:     logger,
	}
	uri := mongoCfg.MongoURI()
	g.client = store.NewLazy(
		func(ctx context.Context) (*mongo.Client, error) {
			return dial(ctx, uri, mongoCfg.Database, logger)
		},
		func(c *mongo.Client) {
			_ = c.Disconnect(context.Background())
		},
		storeCfg.ConnectTimeout,
	)
	return g
}

func dial(ctx context.Context, uri, database string, logger *zap.Logger) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("MongoDB connection established", zap.String("database", database))
	return client, nil
}

// Connect establishes the client if it is not cached yet.
func (g *Gateway) Connect(ctx context.Context) error {
	_, err := g.client.Get(ctx)
	if err != nil {
		g.logger.Error("MongoDB connection failed", zap.Error(err))
	}
	return err
}

// Collection returns the transactions collection, connecting on first use.
func (g *Gateway) Collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := g.client.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(g.database).Collection(g.collection), nil
}

func (g *Gateway) Close(ctx context.Context) error {
	client, ok := g.client.Loaded()
	if !ok {
		return nil
	}
	return client.Disconnect(ctx)
}
