package mongo

import (
	"context"
	"fmt"

	"album-service/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

var (
	Client   *mongo.Client
	Database *mongo.Database
)

func InitMongoDB(ctx context.Context, cfg *config.MongoDBConfig, log *zap.Logger) error {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.PoolSize).
		SetTimeout(cfg.Timeout)

	var err error
	Client, err = mongo.Connect(clientOptions)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.Timeout)
	defer pingCancel()
	if err := Client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("error pinging MongoDB: %w", err)
	}

	Database = Client.Database(cfg.Database)
	log.Info("Successfully connected to MongoDB", zap.String("database", cfg.Database))

	return nil
}

// CloseDB closes the MongoDB connection
func CloseDB(ctx context.Context, log *zap.Logger) {
	if Client == nil {
		return
	}
	if err := Client.Disconnect(ctx); err != nil {
		log.Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}
