package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/metrics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// ReviewStore 评论存储
type ReviewStore struct {
	collection *mongo.Collection
}

func NewReviewStore(d *Database) *ReviewStore {
	return &ReviewStore{collection: d.OpenCollection(ReviewsCollection)}
}

// Create 保存评论，不检查 MovieID 是否对应一部存在的电影
func (s *ReviewStore) Create(ctx context.Context, review *models.Review) error {
	review.ID = bson.NewObjectID()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.collection.InsertOne(ctx, review)
	if err = metrics.ObserveDB("insert", ReviewsCollection, start, err); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// List 返回评论列表，filter.MovieID 不合法时返回 ErrInvalidID
// 没有结果时返回空切片而不是错误
func (s *ReviewStore) List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	movieID, err := filterMovieID(filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cursor, err := s.collection.Find(ctx, reviewFilter(movieID),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err = metrics.ObserveDB("find", ReviewsCollection, start, err); err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// ListWithMovies 评论连同引用的电影详情（左连接）
func (s *ReviewStore) ListWithMovies(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewWithMovie, error) {
	movieID, err := filterMovieID(filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cursor, err := s.collection.Aggregate(ctx, reviewsWithMoviesPipeline(movieID))
	if err = metrics.ObserveDB("aggregate", ReviewsCollection, start, err); err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]models.ReviewWithMovie, 0)
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return reviews, nil
}

// DeleteByID 按评论自身的 _id 删除
func (s *ReviewStore) DeleteByID(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return ErrNotFound
	}

	start := time.Now()
	result, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err = metrics.ObserveDB("delete", ReviewsCollection, start, err); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func filterMovieID(filter models.ReviewFilter) (*bson.ObjectID, error) {
	if filter.MovieID == "" {
		return nil, nil
	}
	oid, err := parseID(filter.MovieID)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}
