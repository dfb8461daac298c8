package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/metrics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// UserStore 用户凭证存储
type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(d *Database) *UserStore {
	return &UserStore{collection: d.OpenCollection(UsersCollection)}
}

// Create 保存新用户，user.Password 必须已经是哈希
// 用户名重复时返回 ErrDuplicateIdentity，不会覆盖已有用户
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = bson.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateIdentity
	}
	if err = metrics.ObserveDB("insert", UsersCollection, start, err); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByUsername 按用户名查找，结果包含密码哈希
func (s *UserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	start := time.Now()
	err := s.collection.FindOne(ctx, bson.D{{Key: "username", Value: username}}).Decode(&user)
	_ = metrics.ObserveDB("find", UsersCollection, start, queryErr(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
