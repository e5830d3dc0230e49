package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/elearn-be/internal/filestore"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/ratelimit"
	"github.com/hongminglow/elearn-be/internal/storage/postgres"
)

// TestPostgresIntegration exercises register, login, and purchase against a
// live database.
func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("set RUN_DB_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := mustGetEnv(t, "DATABASE_URL")

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	require.NoError(t, err, "init store")
	defer store.Close()

	doc, err := store.CreateDocument(ctx, models.Document{
		Title:     fmt.Sprintf("integration %d", time.Now().UnixNano()),
		Price:     50000,
		FileRef:   "integration/missing.pdf",
		FileType:  models.FileTypePDF,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	handler := NewRouter(testConfig(), Deps{
		Store:   store,
		Files:   filestore.NewLocal(t.TempDir()),
		Limiter: ratelimit.NewMemory(100),
		Logger:  logging.Discard(),
	})
	ts := httptest.NewServer(handler)
	defer ts.Close()
	api := &testAPI{t: t, srv: ts}

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	api.register(email)
	token := api.login(email)

	me := api.json(http.MethodGet, "/auth/me", token, nil, http.StatusOK)
	var user models.User
	require.NoError(t, json.Unmarshal(me.Data, &user))
	require.Equal(t, email, user.Email)

	var purchase struct {
		Created bool `json:"created"`
	}
	for _, want := range []bool{true, false} {
		env := api.json(http.MethodPost, "/documents/purchase", token, map[string]int64{"document_id": doc.ID}, http.StatusOK)
		require.NoError(t, json.Unmarshal(env.Data, &purchase))
		require.Equal(t, want, purchase.Created)
	}

	grants, err := store.ListEntitlementsByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)

	t.Logf("user %s (id=%d) purchased document %d", email, user.ID, doc.ID)
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
