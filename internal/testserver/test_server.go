// Package testserver provides an HTTP test harness wiring real SQLite
// repositories behind the API router.
package testserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/planward/planward/internal/clock"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/sqlite"
	"github.com/planward/planward/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Clock  *clock.Fixed
	Token  string
	UserID string
}

func New(t *testing.T, token, userID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	templateRepo := sqlite.NewTemplateRepository(db)
	planRepo := sqlite.NewPlanRepository(db)

	clk := &clock.Fixed{T: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	templateSvc := template.NewService(templateRepo, clk, nil)
	planSvc := plan.NewService(planRepo, templateRepo, clk, nil)

	resolver := &apiTokenResolver{db: db}
	router := transport.NewRouter(templateSvc, planSvc, transport.AuthMiddleware(resolver), nil)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server: server,
		DB:     db,
		Clock:  clk,
		Token:  token,
		UserID: userID,
	}

	require.NoError(t, ts.AddToken(token, userID))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddToken(token, userID string) error {
	_, err := ts.DB.Exec(
		`INSERT INTO api_tokens (token_hash, user_id, created_at) VALUES (?, ?, ?)`,
		hashToken(token), userID, time.Now(),
	)
	return err
}

type apiTokenResolver struct {
	db *sqlite.DB
}

func (r *apiTokenResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	hash := hashToken(token)
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM api_tokens WHERE token_hash = ?`, hash).Scan(&userID)
	if err != nil || userID == "" {
		return "", transport.ErrUnauthorized
	}
	return userID, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
