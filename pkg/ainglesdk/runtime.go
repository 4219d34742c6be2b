package ainglesdk

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AIngleLab/aingle_sdk_go/internal/devseed"
	"github.com/AIngleLab/aingle_sdk_go/pkg/aingle"
	"github.com/AIngleLab/aingle_sdk_go/pkg/aingle/mock"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvMode      = "AINGLE_RUNTIME_MODE"
	EnvNodeURL   = "AINGLE_NODE_URL"
	EnvSocketURL = "AINGLE_WS_URL"
	EnvDebug     = "AINGLE_DEBUG"
	EnvMockSeed  = "AINGLE_MOCK_SEED"
)

// Runtime modes.
const (
	ModeAuto = "auto"
	ModeHTTP = "http"
	ModeMock = "mock"
)

// NewFromEnv initialises a client from AIngle environment variables and
// returns the resolved mode ("http" or "mock"). Auto mode picks http when
// AINGLE_NODE_URL is set and falls back to an in-memory mock node otherwise.
func NewFromEnv(extra ...aingle.Option) (*aingle.Client, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(EnvMode)))
	nodeURL := strings.TrimSpace(os.Getenv(EnvNodeURL))

	switch mode {
	case "", ModeAuto:
		if nodeURL != "" {
			return newHTTPClient(nodeURL, extra)
		}
		return newMockClient(extra)
	case ModeHTTP:
		if nodeURL == "" {
			return nil, "", fmt.Errorf("ainglesdk: HTTP mode requires %s", EnvNodeURL)
		}
		return newHTTPClient(nodeURL, extra)
	case ModeMock:
		return newMockClient(extra)
	default:
		return nil, "", fmt.Errorf("ainglesdk: unsupported %s value %q", EnvMode, mode)
	}
}

func newHTTPClient(nodeURL string, extra []aingle.Option) (*aingle.Client, string, error) {
	opts := []aingle.Option{aingle.WithNodeURL(nodeURL)}
	if socketURL := strings.TrimSpace(os.Getenv(EnvSocketURL)); socketURL != "" {
		opts = append(opts, aingle.WithSocketURL(socketURL))
	}
	if debug := envDebug(); debug {
		opts = append(opts, aingle.WithDebug(true))
	}
	opts = append(opts, extra...)

	client, err := aingle.New(opts...)
	if err != nil {
		return nil, "", fmt.Errorf("ainglesdk: init HTTP client: %w", err)
	}
	return client, ModeHTTP, nil
}

func newMockClient(extra []aingle.Option) (*aingle.Client, string, error) {
	node := mock.New()
	if path := strings.TrimSpace(os.Getenv(EnvMockSeed)); path != "" {
		entries, err := devseed.LoadEntrySeed(path)
		if err != nil {
			return nil, "", fmt.Errorf("ainglesdk: load mock seed: %w", err)
		}
		if err := node.Seed(entries); err != nil {
			return nil, "", fmt.Errorf("ainglesdk: apply mock seed: %w", err)
		}
	}

	opts := []aingle.Option{aingle.WithBackend(node)}
	if envDebug() {
		opts = append(opts, aingle.WithDebug(true))
	}
	opts = append(opts, extra...)

	client, err := aingle.New(opts...)
	if err != nil {
		return nil, "", fmt.Errorf("ainglesdk: init mock client: %w", err)
	}
	return client, ModeMock, nil
}

func envDebug() bool {
	raw := strings.TrimSpace(os.Getenv(EnvDebug))
	if raw == "" {
		return false
	}
	debug, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return debug
}
