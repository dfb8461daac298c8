// Package storetest 提供用户、电影和评论存储的内存实现，供处理器和路由测试使用
// 错误语义与 database 包一致：ErrNotFound、ErrDuplicateIdentity、ErrInvalidID
package storetest

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/database"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
)

// Store 三个集合共享同一把锁，连接查询可以同时读取电影和评论
type Store struct {
	mu      sync.RWMutex
	users   []models.User
	movies  []models.Movie
	reviews []models.Review

	// Err 不为 nil 时所有操作都返回它，用来模拟数据库不可用
	Err error
}

func New() *Store {
	return &Store{}
}

// Users 用户存储视图
func (s *Store) Users() *UserStore { return &UserStore{s} }

// Movies 电影存储视图
func (s *Store) Movies() *MovieStore { return &MovieStore{s} }

// Reviews 评论存储视图
func (s *Store) Reviews() *ReviewStore { return &ReviewStore{s} }

// Ping 实现健康检查
func (s *Store) Ping(context.Context) error { return s.Err }

type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, user *models.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if slices.ContainsFunc(s.users, func(existing models.User) bool { return existing.Username == user.Username }) {
		return database.ErrDuplicateIdentity
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, *user)
	return nil
}

func (u *UserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.User{}, s.Err
	}
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

// Count 已保存的用户数
func (u *UserStore) Count() int {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	return len(u.s.users)
}

type MovieStore struct{ s *Store }

func (m *MovieStore) List(context.Context) ([]models.Movie, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.movies), nil
}

func (m *MovieStore) ListWithRatings(context.Context) ([]models.MovieSummary, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	summaries := make([]models.MovieSummary, 0, len(s.movies))
	for _, movie := range s.movies {
		summaries = append(summaries, models.MovieSummary{Movie: movie, AvgRating: s.avgRating(movie.ID)})
	}
	// 与聚合管道一致：评分降序，null 排在最后，评分相同时按标题升序
	slices.SortStableFunc(summaries, func(a, b models.MovieSummary) int {
		switch {
		case a.AvgRating == nil && b.AvgRating == nil:
			return cmp.Compare(a.Title, b.Title)
		case a.AvgRating == nil:
			return 1
		case b.AvgRating == nil:
			return -1
		}
		if c := cmp.Compare(*b.AvgRating, *a.AvgRating); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return summaries, nil
}

func (m *MovieStore) GetByID(_ context.Context, id string) (models.Movie, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.Movie{}, s.Err
	}
	movie, ok := s.movieByID(id)
	if !ok {
		return models.Movie{}, database.ErrNotFound
	}
	return movie, nil
}

func (m *MovieStore) GetWithReviews(_ context.Context, id string) (models.MovieDetail, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.MovieDetail{}, s.Err
	}
	movie, ok := s.movieByID(id)
	if !ok {
		return models.MovieDetail{}, database.ErrNotFound
	}
	return models.MovieDetail{
		Movie:     movie,
		AvgRating: s.avgRating(movie.ID),
		Reviews:   s.reviewsFor(&movie.ID),
	}, nil
}

func (m *MovieStore) FindByTitle(_ context.Context, title string) (models.Movie, error) {
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.Movie{}, s.Err
	}
	i := slices.IndexFunc(s.movies, func(movie models.Movie) bool { return movie.Title == title })
	if i < 0 {
		return models.Movie{}, database.ErrNotFound
	}
	return s.movies[i], nil
}

func (m *MovieStore) Create(_ context.Context, movie *models.Movie) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	movie.ID = bson.NewObjectID()
	if movie.Actors == nil {
		movie.Actors = []string{}
	}
	s.movies = append(s.movies, *movie)
	return nil
}

func (m *MovieStore) UpdateByTitle(_ context.Context, title string, patch models.MoviePatch) (models.Movie, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Movie{}, s.Err
	}
	i := slices.IndexFunc(s.movies, func(movie models.Movie) bool { return movie.Title == title })
	if i < 0 {
		return models.Movie{}, database.ErrNotFound
	}

	movie := &s.movies[i]
	if patch.ReleaseDate != nil {
		movie.ReleaseDate = *patch.ReleaseDate
	}
	if patch.Genre != nil {
		movie.Genre = *patch.Genre
	}
	if patch.Actors != nil {
		movie.Actors = slices.Clone(*patch.Actors)
	}
	if patch.ImageURL != nil {
		movie.ImageURL = *patch.ImageURL
	}
	return *movie, nil
}

func (m *MovieStore) DeleteByTitle(_ context.Context, title string) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := slices.IndexFunc(s.movies, func(movie models.Movie) bool { return movie.Title == title })
	if i < 0 {
		return database.ErrNotFound
	}
	s.movies = slices.Delete(s.movies, i, i+1)
	return nil
}

type ReviewStore struct{ s *Store }

func (r *ReviewStore) Create(_ context.Context, review *models.Review) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	review.ID = bson.NewObjectID()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	s.reviews = append(s.reviews, *review)
	return nil
}

func (r *ReviewStore) List(_ context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	movieID, err := filterID(filter)
	if err != nil {
		return nil, err
	}
	return s.reviewsFor(movieID), nil
}

func (r *ReviewStore) ListWithMovies(_ context.Context, filter models.ReviewFilter) ([]models.ReviewWithMovie, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	movieID, err := filterID(filter)
	if err != nil {
		return nil, err
	}

	// 左连接：找不到电影的评论保留，Movie 为 nil
	joined := make([]models.ReviewWithMovie, 0)
	for _, review := range s.reviewsFor(movieID) {
		entry := models.ReviewWithMovie{Review: review}
		if movie, ok := s.movieByID(review.MovieID.Hex()); ok {
			entry.Movie = &movie
		}
		joined = append(joined, entry)
	}
	return joined, nil
}

func (r *ReviewStore) DeleteByID(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := slices.IndexFunc(s.reviews, func(review models.Review) bool { return review.ID.Hex() == id })
	if i < 0 {
		return database.ErrNotFound
	}
	s.reviews = slices.Delete(s.reviews, i, i+1)
	return nil
}

// 以下方法要求调用方已经持有锁

func (s *Store) movieByID(id string) (models.Movie, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Movie{}, false
	}
	i := slices.IndexFunc(s.movies, func(movie models.Movie) bool { return movie.ID == oid && movie.Title != "" })
	if i < 0 {
		return models.Movie{}, false
	}
	return s.movies[i], true
}

func (s *Store) reviewsFor(movieID *bson.ObjectID) []models.Review {
	out := make([]models.Review, 0)
	for _, review := range s.reviews {
		if movieID == nil || review.MovieID == *movieID {
			out = append(out, review)
		}
	}
	return out
}

func (s *Store) avgRating(movieID bson.ObjectID) *float64 {
	sum, n := 0, 0
	for _, review := range s.reviews {
		if review.MovieID == movieID {
			sum += review.Rating
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

func filterID(filter models.ReviewFilter) (*bson.ObjectID, error) {
	if filter.MovieID == "" {
		return nil, nil
	}
	oid, err := bson.ObjectIDFromHex(filter.MovieID)
	if err != nil {
		return nil, database.ErrInvalidID
	}
	return &oid, nil
}
