// Package controllers 包含用户、电影和评论的 HTTP 处理器函数
//
// 处理器只依赖这里定义的接口，database 包中的存储实现这些接口，测试中使用内存实现
package controllers

import (
	"context"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/analytics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// UserStore 用户凭证存储
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// MovieStore 电影目录存储
type MovieStore interface {
	List(ctx context.Context) ([]models.Movie, error)
	ListWithRatings(ctx context.Context) ([]models.MovieSummary, error)
	GetByID(ctx context.Context, id string) (models.Movie, error)
	GetWithReviews(ctx context.Context, id string) (models.MovieDetail, error)
	FindByTitle(ctx context.Context, title string) (models.Movie, error)
	Create(ctx context.Context, movie *models.Movie) error
	UpdateByTitle(ctx context.Context, title string, patch models.MoviePatch) (models.Movie, error)
	DeleteByTitle(ctx context.Context, title string) error
}

// ReviewStore 评论存储
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
	ListWithMovies(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewWithMovie, error)
	DeleteByID(ctx context.Context, id string) error
}

// EventDispatcher 后台发送分析事件
type EventDispatcher interface {
	Dispatch(ctx context.Context, build analytics.BuildFunc)
}

// Pinger 健康检查使用
type Pinger interface {
	Ping(ctx context.Context) error
}
