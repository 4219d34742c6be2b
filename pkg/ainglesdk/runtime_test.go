package ainglesdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIngleLab/aingle_sdk_go/pkg/ainglesdk"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		ainglesdk.EnvMode,
		ainglesdk.EnvNodeURL,
		ainglesdk.EnvSocketURL,
		ainglesdk.EnvDebug,
		ainglesdk.EnvMockSeed,
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnvDefaultsToMock(t *testing.T) {
	clearEnv(t)

	client, mode, err := ainglesdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ainglesdk.ModeMock, mode)

	ctx := context.Background()
	hash, err := client.CreateEntry(ctx, map[string]string{"hello": "world"})
	require.NoError(t, err)

	entry, err := client.GetEntry(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, entry.Hash)
}

func TestNewFromEnvHTTP(t *testing.T) {
	clearEnv(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/info" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"node_id": "node-env",
			"version": "1.2.3",
		})
	}))
	defer srv.Close()

	t.Setenv(ainglesdk.EnvNodeURL, srv.URL)

	client, mode, err := ainglesdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ainglesdk.ModeHTTP, mode)

	info, err := client.NodeInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "node-env", info.NodeID)
}

func TestNewFromEnvHTTPModeRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(ainglesdk.EnvMode, ainglesdk.ModeHTTP)

	_, _, err := ainglesdk.NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnvUnknownMode(t *testing.T) {
	clearEnv(t)
	t.Setenv(ainglesdk.EnvMode, "carrier-pigeon")

	_, _, err := ainglesdk.NewFromEnv()
	require.Error(t, err)
}

func TestNewFromEnvMockSeed(t *testing.T) {
	clearEnv(t)

	seedPath := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(`[{"data":{"seeded":true}}]`), 0o600))

	t.Setenv(ainglesdk.EnvMode, ainglesdk.ModeMock)
	t.Setenv(ainglesdk.EnvMockSeed, seedPath)

	client, mode, err := ainglesdk.NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ainglesdk.ModeMock, mode)

	info, err := client.NodeInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.EntriesCount)
}

func TestNewFromEnvBadSeedPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(ainglesdk.EnvMode, ainglesdk.ModeMock)
	t.Setenv(ainglesdk.EnvMockSeed, filepath.Join(t.TempDir(), "missing.json"))

	_, _, err := ainglesdk.NewFromEnv()
	require.Error(t, err)
}
