package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/planward/planward/internal/transport"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	users map[string]string
}

func (r stubResolver) ResolveUser(_ context.Context, token string) (string, error) {
	userID, ok := r.users[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return userID, nil
}

func newAuthedHandler(t *testing.T) http.Handler {
	t.Helper()

	mw := transport.AuthMiddleware(stubResolver{users: map[string]string{"good-token": "user1"}})
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := transport.UserFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(userID))
	}))
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	handler := newAuthedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.Success)
	require.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	handler := newAuthedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ValidTokenInjectsUser(t *testing.T) {
	handler := newAuthedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user1", rec.Body.String())
}

func TestWithUserRoundTrip(t *testing.T) {
	ctx := transport.WithUser(context.Background(), "user9")
	userID, ok := transport.UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "user9", userID)
}
