package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/analytics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/database"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/logging"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

// CreateReview 创建评论，同时服务 POST /reviews 和 POST /movies/:id/reviews
// 路径中的 :id 优先于请求体中的 movieId；用户名总是取自令牌
func CreateReview(reviews ReviewStore, movies MovieStore, events EventDispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
			return
		}
		if id := c.Param("id"); id != "" {
			req.MovieID = id
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
			return
		}

		movieID, err := bson.ObjectIDFromHex(req.MovieID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movieId"})
			return
		}
		userID, err := utils.GetUserIdFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		username, err := utils.GetUsernameFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		review := models.Review{
			MovieID:  movieID,
			Username: username,
			Review:   req.Review,
			Rating:   *req.Rating,
		}
		if err := reviews.Create(c.Request.Context(), &review); err != nil {
			internalError(c, err, "Error creating review")
			return
		}

		logging.Ctx(c.Request.Context()).Info().
			Str("user_id", userID).
			Str("review_id", review.ID.Hex()).
			Str("movie_id", review.MovieID.Hex()).
			Msg("review created")
		c.JSON(http.StatusCreated, gin.H{"message": "Review created!", "review": review})

		// 响应已经写出，分析事件在后台发送，结果不影响本次请求
		events.Dispatch(c.Request.Context(), reviewEvent(movies, movieID.Hex(), review.Rating))
	}
}

// reviewEvent 在后台查询电影的类型和标题来构造事件
// 电影不存在时类型记为 Unknown，标题为空
func reviewEvent(movies MovieStore, movieID string, rating int) analytics.BuildFunc {
	return func(ctx context.Context) (analytics.Event, error) {
		movie, err := movies.GetByID(ctx, movieID)
		if errors.Is(err, database.ErrNotFound) {
			logging.Ctx(ctx).Debug().Str("movie_id", movieID).Msg("review references a missing movie")
			return analytics.ReviewEvent("", "", rating), nil
		}
		if err != nil {
			return analytics.Event{}, err
		}
		return analytics.ReviewEvent(movie.Genre, movie.Title, rating), nil
	}
}

// GetReviews 评论列表
// movieId 可选，按电影过滤；reviews=true 时每条评论带上电影详情，两者可以同时使用
func GetReviews(reviews ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.ReviewFilter{MovieID: c.Query("movieId")}
		listReviews(c, reviews, filter, http.StatusBadRequest, gin.H{"error": "Invalid movieId"})
	}
}

// GetMovieReviews 某部电影的评论，:id 不是合法的 ObjectID 时返回 404
func GetMovieReviews(reviews ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.ReviewFilter{MovieID: c.Param("id")}
		listReviews(c, reviews, filter, http.StatusNotFound, gin.H{"error": "Movie not found"})
	}
}

func listReviews(c *gin.Context, reviews ReviewStore, filter models.ReviewFilter, invalidStatus int, invalidBody gin.H) {
	var (
		result any
		err    error
	)
	if wantsReviews(c) {
		result, err = reviews.ListWithMovies(c.Request.Context(), filter)
	} else {
		result, err = reviews.List(c.Request.Context(), filter)
	}

	if errors.Is(err, database.ErrInvalidID) {
		c.JSON(invalidStatus, invalidBody)
		return
	}
	if err != nil {
		internalError(c, err, "Error fetching reviews")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteReview 按评论自身的 _id 删除
func DeleteReview(reviews ReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := reviews.DeleteByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		if err != nil {
			internalError(c, err, "Error deleting review")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
	}
}
