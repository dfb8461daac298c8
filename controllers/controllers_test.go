package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/analytics"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/storetest"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errStoreDown = errors.New("connection refused")

// syncDispatcher 在测试中同步执行事件构造，便于断言
type syncDispatcher struct {
	mu     sync.Mutex
	events []analytics.Event
	errs   []error
}

func (d *syncDispatcher) Dispatch(ctx context.Context, build analytics.BuildFunc) {
	event, err := build(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.errs = append(d.errs, err)
		return
	}
	d.events = append(d.events, event)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// asUser 代替认证中间件写入用户身份
func asUser(username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.UserIDKey, "64b7f0c2a1b2c3d4e5f60718")
		c.Set(utils.UsernameKey, username)
		c.Next()
	}
}

func newIssuer(t *testing.T) *utils.TokenIssuer {
	t.Helper()
	issuer, err := utils.NewTokenIssuer("controllers_test_secret_value_123456", "MovieReviews", time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestHealth(t *testing.T) {
	store := storetest.New()
	router := gin.New()
	router.GET("/health", Health(store))

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server is running"}`, w.Body.String())

	store.Err = errStoreDown
	w = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWantsReviews(t *testing.T) {
	tests := map[string]bool{
		"/":               false,
		"/?reviews=true":  true,
		"/?reviews=1":     true,
		"/?reviews=false": false,
		"/?reviews=yes":   false,
	}
	for target, want := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		assert.Equal(t, want, wantsReviews(c), target)
	}
}

func seedMovie(t *testing.T, store *storetest.Store, title, genre string) models.Movie {
	t.Helper()
	movie := models.Movie{Title: title, ReleaseDate: 2000, Genre: genre}
	require.NoError(t, store.Movies().Create(context.Background(), &movie))
	return movie
}

func seedReview(t *testing.T, store *storetest.Store, movie models.Movie, rating int) models.Review {
	t.Helper()
	review := models.Review{MovieID: movie.ID, Username: "a1", Review: "text", Rating: rating}
	require.NoError(t, store.Reviews().Create(context.Background(), &review))
	return review
}
