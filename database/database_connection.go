package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
)

// 集合名称
const (
	UsersCollection   = "users"
	MoviesCollection  = "movies"
	ReviewsCollection = "reviews"
)

// Database 持有 MongoDB 连接，在 main 中创建并在退出时关闭
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect 连接 MongoDB，确认可达后创建所需索引
func Connect(ctx context.Context, uri, databaseName string) (*Database, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	// 测试数据库连接是否成功
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}

	d := &Database{client: client, db: client.Database(databaseName)}
	if err := d.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}

	logging.Info().Str("database", databaseName).Msg("connected to MongoDB")
	return d, nil
}

// OpenCollection 返回当前数据库中的集合
func (d *Database) OpenCollection(collectionName string) *mongo.Collection {
	return d.db.Collection(collectionName)
}

// EnsureIndexes 创建索引
// users.username 的唯一索引是用户名唯一性的唯一保证，重复注册依靠它报错
func (d *Database) EnsureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		UsersCollection: {
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		MoviesCollection: {
			Keys: bson.D{{Key: "title", Value: 1}},
		},
		ReviewsCollection: {
			Keys: bson.D{{Key: "movieId", Value: 1}},
		},
	}
	for collection, model := range indexes {
		if _, err := d.OpenCollection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", collection, err)
		}
	}
	return nil
}

// Ping 检查数据库是否可达
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close 断开数据库连接
func (d *Database) Close(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}
