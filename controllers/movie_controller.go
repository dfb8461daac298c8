package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/database"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// GetMovies 获取电影列表
// reviews=true 时每部电影带上平均评分，并按评分降序排列（没有评论的排在最后）
// title=<标题> 时只返回标题完全匹配的电影，可以和 reviews=true 同时使用
func GetMovies(movies MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if title := c.Query("title"); title != "" {
			movie, err := movies.FindByTitle(ctx, title)
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusOK, []models.Movie{})
				return
			}
			if err != nil {
				internalError(c, err, "Error fetching movies")
				return
			}
			if !wantsReviews(c) {
				c.JSON(http.StatusOK, []models.Movie{movie})
				return
			}

			detail, err := movies.GetWithReviews(ctx, movie.ID.Hex())
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusOK, []models.MovieSummary{})
				return
			}
			if err != nil {
				internalError(c, err, "Error fetching movies")
				return
			}
			c.JSON(http.StatusOK, []models.MovieSummary{{Movie: detail.Movie, AvgRating: detail.AvgRating}})
			return
		}

		if wantsReviews(c) {
			summaries, err := movies.ListWithRatings(ctx)
			if err != nil {
				internalError(c, err, "Error fetching movies")
				return
			}
			c.JSON(http.StatusOK, summaries)
			return
		}

		list, err := movies.List(ctx)
		if err != nil {
			internalError(c, err, "Error fetching movies")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetMovie 根据 _id 获取单个电影
// reviews=true 时返回电影连同它的评论和平均评分
func GetMovie(movies MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		movieID := c.Param("id")

		var (
			result any
			err    error
		)
		if wantsReviews(c) {
			result, err = movies.GetWithReviews(ctx, movieID)
		} else {
			result, err = movies.GetByID(ctx, movieID)
		}

		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		if err != nil {
			internalError(c, err, "Error fetching movie")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// AddMovie 添加新电影
// title 和 releaseDate 必填，其余字段按验证规则检查
func AddMovie(movies MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var movie models.Movie
		if err := c.ShouldBindJSON(&movie); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
			return
		}

		if movie.Title == "" || movie.ReleaseDate == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and releaseDate are required"})
			return
		}
		if err := validate.Struct(movie); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
			return
		}

		if err := movies.Create(c.Request.Context(), &movie); err != nil {
			internalError(c, err, "Error adding movie")
			return
		}
		c.JSON(http.StatusCreated, movie)
	}
}

// UpdateMovie 按标题部分更新电影
// 没有匹配的电影返回 404，更新失败返回 500
func UpdateMovie(movies MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.Param("title")
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		var patch models.MoviePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data"})
			return
		}
		if patch.IsEmpty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
			return
		}
		if err := validate.Struct(patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
			return
		}

		movie, err := movies.UpdateByTitle(c.Request.Context(), title, patch)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		if err != nil {
			internalError(c, err, "Error updating movie")
			return
		}
		c.JSON(http.StatusOK, movie)
	}
}

// DeleteMovie 按标题删除电影，它的评论保留（读取时作为孤立评论处理）
func DeleteMovie(movies MovieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := movies.DeleteByTitle(c.Request.Context(), c.Param("title"))
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		if err != nil {
			internalError(c, err, "Error deleting movie")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Movie deleted successfully"})
	}
}
