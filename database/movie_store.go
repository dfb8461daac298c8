package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/metrics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// MovieStore 电影目录存储
type MovieStore struct {
	collection *mongo.Collection
}

func NewMovieStore(d *Database) *MovieStore {
	return &MovieStore{collection: d.OpenCollection(MoviesCollection)}
}

// List 返回所有带 title 的电影
func (s *MovieStore) List(ctx context.Context) ([]models.Movie, error) {
	start := time.Now()
	cursor, err := s.collection.Find(ctx, movieFilter(),
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err = metrics.ObserveDB("find", MoviesCollection, start, err); err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	defer cursor.Close(ctx)

	movies := make([]models.Movie, 0)
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return movies, nil
}

// ListWithRatings 返回所有电影及其平均评分，按评分降序
func (s *MovieStore) ListWithRatings(ctx context.Context) ([]models.MovieSummary, error) {
	start := time.Now()
	cursor, err := s.collection.Aggregate(ctx, moviesWithRatingsPipeline())
	if err = metrics.ObserveDB("aggregate", MoviesCollection, start, err); err != nil {
		return nil, fmt.Errorf("aggregate movies: %w", err)
	}
	defer cursor.Close(ctx)

	movies := make([]models.MovieSummary, 0)
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return movies, nil
}

// GetByID 按 _id 查找电影
// id 不合法或者文档没有 title 时返回 ErrNotFound
func (s *MovieStore) GetByID(ctx context.Context, id string) (models.Movie, error) {
	var movie models.Movie
	oid, err := parseID(id)
	if err != nil {
		return movie, ErrNotFound
	}
	return s.findOne(ctx, movieFilter(bson.E{Key: "_id", Value: oid}))
}

// GetWithReviews 电影连同它的评论和平均评分
func (s *MovieStore) GetWithReviews(ctx context.Context, id string) (models.MovieDetail, error) {
	var detail models.MovieDetail
	oid, err := parseID(id)
	if err != nil {
		return detail, ErrNotFound
	}

	start := time.Now()
	cursor, err := s.collection.Aggregate(ctx, movieDetailPipeline(oid))
	if err = metrics.ObserveDB("aggregate", MoviesCollection, start, err); err != nil {
		return detail, fmt.Errorf("aggregate movie: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return detail, fmt.Errorf("aggregate movie: %w", err)
		}
		return detail, ErrNotFound
	}
	if err := cursor.Decode(&detail); err != nil {
		return detail, fmt.Errorf("decode movie: %w", err)
	}
	if detail.Reviews == nil {
		detail.Reviews = []models.Review{}
	}
	return detail, nil
}

// FindByTitle 按标题精确查找
func (s *MovieStore) FindByTitle(ctx context.Context, title string) (models.Movie, error) {
	return s.findOne(ctx, bson.D{{Key: "title", Value: title}})
}

func (s *MovieStore) findOne(ctx context.Context, filter bson.D) (models.Movie, error) {
	var movie models.Movie
	start := time.Now()
	err := s.collection.FindOne(ctx, filter).Decode(&movie)
	_ = metrics.ObserveDB("find", MoviesCollection, start, queryErr(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return movie, ErrNotFound
	}
	if err != nil {
		return movie, fmt.Errorf("find movie: %w", err)
	}
	return movie, nil
}

// Create 保存新电影并回填生成的 _id
func (s *MovieStore) Create(ctx context.Context, movie *models.Movie) error {
	movie.ID = bson.NewObjectID()
	if movie.Actors == nil {
		movie.Actors = []string{}
	}

	start := time.Now()
	_, err := s.collection.InsertOne(ctx, movie)
	if err = metrics.ObserveDB("insert", MoviesCollection, start, err); err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

// UpdateByTitle 部分更新并返回更新后的文档
// 没有匹配的电影时返回 ErrNotFound，与更新失败区分开
func (s *MovieStore) UpdateByTitle(ctx context.Context, title string, patch models.MoviePatch) (models.Movie, error) {
	var movie models.Movie
	update := bson.D{{Key: "$set", Value: patch.SetDocument()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	start := time.Now()
	err := s.collection.FindOneAndUpdate(ctx, bson.D{{Key: "title", Value: title}}, update, opts).Decode(&movie)
	_ = metrics.ObserveDB("update", MoviesCollection, start, queryErr(err))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return movie, ErrNotFound
	}
	if err != nil {
		return movie, fmt.Errorf("update movie: %w", err)
	}
	return movie, nil
}

// DeleteByTitle 删除匹配标题的电影，评论不会级联删除
func (s *MovieStore) DeleteByTitle(ctx context.Context, title string) error {
	start := time.Now()
	result, err := s.collection.DeleteOne(ctx, bson.D{{Key: "title", Value: title}})
	if err = metrics.ObserveDB("delete", MoviesCollection, start, err); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
