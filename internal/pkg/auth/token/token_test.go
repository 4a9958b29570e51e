package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseRoundTrip(t *testing.T) {
	payload := &Payload{UserID: "user-1", Email: "user@example.com"}

	tokenString, err := Generate(payload, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	parsed, err := Parse(tokenString, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, "user@example.com", parsed.Email)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tokenString, err := Generate(&Payload{UserID: "user-1"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokenString, "other-secret")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokenString, err := Generate(&Payload{UserID: "user-1"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(tokenString, testSecret)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestCookieExtractorMiddlewareInjectsPayload(t *testing.T) {
	tokenString, err := Generate(&Payload{UserID: "user-1"}, testSecret, time.Hour)
	require.NoError(t, err)

	var got *Payload
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tokenString})
	w := httptest.NewRecorder()

	CookieExtractorMiddleware(testSecret)(next).ServeHTTP(w, r)

	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
}

func TestCookieExtractorMiddlewareAnonymousPaths(t *testing.T) {
	var got *Payload
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = GetPayloadFromContext(r)
	})

	t.Run("no cookie", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		CookieExtractorMiddleware(testSecret)(next).ServeHTTP(httptest.NewRecorder(), r)

		assert.True(t, called)
		assert.Nil(t, got)
	})

	t.Run("invalid cookie", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered"})
		CookieExtractorMiddleware(testSecret)(next).ServeHTTP(httptest.NewRecorder(), r)

		assert.True(t, called)
		assert.Nil(t, got)
	})
}
