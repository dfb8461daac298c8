package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/models"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/storetest"
	"github.com/KamisAyaka/MovieReviews/Server/MovieReviewsServer/utils"
)

func newAuthRouter(t *testing.T, store *storetest.Store, production bool) (*gin.Engine, *utils.TokenIssuer) {
	t.Helper()
	issuer := newIssuer(t)
	cookies := NewCookieConfig(production, issuer.TTL())

	router := gin.New()
	router.POST("/signup", Signup(store.Users()))
	router.POST("/signin", Signin(store.Users(), issuer, cookies))
	router.POST("/signout", Signout(cookies))
	return router, issuer
}

func TestSignup(t *testing.T) {
	store := storetest.New()
	router, _ := newAuthRouter(t, store, false)

	w := doJSON(t, router, http.MethodPost, "/signup", gin.H{"name": "A", "username": "a1", "password": "p"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.AuthResponse{Success: true, Msg: "Successfully created new user."}, decode[models.AuthResponse](t, w))

	user, err := store.Users().FindByUsername(t.Context(), "a1")
	require.NoError(t, err)
	assert.NotEqual(t, "p", user.Password, "password must be stored hashed")
	assert.True(t, utils.VerifyPassword("p", user.Password))

	// 重复注册
	w = doJSON(t, router, http.MethodPost, "/signup", gin.H{"name": "B", "username": "a1", "password": "other"})
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode[models.AuthResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, store.Users().Count())

	user, err = store.Users().FindByUsername(t.Context(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name, "existing user is not overwritten")
}

func TestSignup_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		msg    string
	}{
		{name: "missing password", body: gin.H{"username": "a1"}, status: http.StatusBadRequest, msg: "Please include both username and password to signup."},
		{name: "missing username", body: gin.H{"password": "p"}, status: http.StatusBadRequest, msg: "Please include both username and password to signup."},
		{name: "malformed json", body: `{"username":`, status: http.StatusBadRequest, msg: "Invalid input data"},
		{name: "password too long", body: gin.H{"username": "a1", "password": strings.Repeat("x", 80)}, status: http.StatusBadRequest},
		{name: "multibyte password over 72 bytes", body: gin.H{"username": "a1", "password": strings.Repeat("密", 30)}, status: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := storetest.New()
			router, _ := newAuthRouter(t, store, false)

			w := doJSON(t, router, http.MethodPost, "/signup", test.body)
			assert.Equal(t, test.status, w.Code)
			resp := decode[models.AuthResponse](t, w)
			assert.False(t, resp.Success)
			if test.msg != "" {
				assert.Equal(t, test.msg, resp.Msg)
			}
			assert.Equal(t, 0, store.Users().Count())
		})
	}
}

func TestSignup_StoreUnavailable(t *testing.T) {
	store := storetest.New()
	store.Err = errStoreDown
	router, _ := newAuthRouter(t, store, false)

	w := doJSON(t, router, http.MethodPost, "/signup", gin.H{"username": "a1", "password": "p"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decode[models.AuthResponse](t, w).Success)
}

func TestSignin(t *testing.T) {
	store := storetest.New()
	router, issuer := newAuthRouter(t, store, false)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/signup",
		gin.H{"name": "A", "username": "a1", "password": "p"}).Code)

	w := doJSON(t, router, http.MethodPost, "/signin", gin.H{"username": "a1", "password": "p"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.AuthResponse](t, w)
	assert.True(t, resp.Success)
	require.True(t, strings.HasPrefix(resp.Token, "JWT "))

	claims, err := issuer.Validate(strings.TrimPrefix(resp.Token, "JWT "))
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.Username)
	assert.NotEmpty(t, claims.UserID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, strings.TrimPrefix(resp.Token, "JWT "), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSignin_Failures(t *testing.T) {
	store := storetest.New()
	router, _ := newAuthRouter(t, store, false)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/signup",
		gin.H{"username": "a1", "password": "p"}).Code)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "wrong password", body: gin.H{"username": "a1", "password": "wrong"}, status: http.StatusUnauthorized},
		{name: "unknown user", body: gin.H{"username": "nobody", "password": "p"}, status: http.StatusUnauthorized},
		{name: "missing password", body: gin.H{"username": "a1"}, status: http.StatusBadRequest},
		{name: "empty body", body: "", status: http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/signin", test.body)
			assert.Equal(t, test.status, w.Code)
			resp := decode[models.AuthResponse](t, w)
			assert.False(t, resp.Success)
			assert.Empty(t, resp.Token)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestSignin_StoreUnavailable(t *testing.T) {
	store := storetest.New()
	router, _ := newAuthRouter(t, store, false)
	store.Err = errStoreDown

	w := doJSON(t, router, http.MethodPost, "/signin", gin.H{"username": "a1", "password": "p"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSignout_ProductionCookie(t *testing.T) {
	store := storetest.New()
	router, _ := newAuthRouter(t, store, true)

	w := doJSON(t, router, http.MethodPost, "/signout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.AccessTokenCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
}
