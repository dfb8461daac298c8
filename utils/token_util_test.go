package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this_is_a_test_secret_with_enough_length"

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, "MovieReviews", time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("", "MovieReviews", time.Hour)
	require.ErrorContains(t, err, "SECRET_KEY is required")

	_, err = NewTokenIssuer(testSecret, "MovieReviews", 0)
	require.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t)
	token, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718", "a1")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "a1", claims.Username)
	assert.Equal(t, "MovieReviews", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	issuer := newIssuer(t)

	expired := newIssuer(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue("id", "a1")
	require.NoError(t, err)

	otherKey, err := NewTokenIssuer("a_completely_different_secret_value", "MovieReviews", time.Hour)
	require.NoError(t, err)
	wrongSig, err := otherKey.Issue("id", "a1")
	require.NoError(t, err)

	otherIssuer, err := NewTokenIssuer(testSecret, "SomeoneElse", time.Hour)
	require.NoError(t, err)
	wrongIss, err := otherIssuer.Issue("id", "a1")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SignedDetails{
		UserID: "id",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "MovieReviews",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SignedDetails{
		UserID:           "id",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "MovieReviews"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not.a.token"},
		{name: "empty", token: ""},
		{name: "expired", token: expiredToken},
		{name: "bad signature", token: wrongSig},
		{name: "wrong issuer", token: wrongIss},
		{name: "alg none", token: none},
		{name: "missing expiration", token: noExp},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			claims, err := issuer.Validate(test.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestGetAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		header  string
		cookie  string
		want    string
		wantErr bool
	}{
		{name: "jwt scheme", header: "JWT abc.def.ghi", want: "abc.def.ghi"},
		{name: "bearer scheme", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "jwt abc", want: "abc"},
		{name: "cookie fallback", cookie: "from-cookie", want: "from-cookie"},
		{name: "header wins over cookie", header: "JWT from-header", cookie: "from-cookie", want: "from-header"},
		{name: "unknown scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "scheme without token", header: "JWT ", wantErr: true},
		{name: "no scheme", header: "abc.def.ghi", wantErr: true},
		{name: "nothing", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			req := httptest.NewRequest(http.MethodGet, "/movies", nil)
			if test.header != "" {
				req.Header.Set("Authorization", test.header)
			}
			if test.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: test.cookie})
			}
			c.Request = req

			got, err := GetAccessToken(c)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
