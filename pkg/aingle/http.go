package aingle

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/AIngleLab/aingle_sdk_go/internal/ainapi"
	"github.com/AIngleLab/aingle_sdk_go/internal/httpx"
)

// Routes of the node's REST API.
const (
	routeEntries = "/api/v1/entries"
	routeInfo    = "/api/v1/info"
	routePeers   = "/api/v1/peers"
	routeSync    = "/api/v1/sync"
)

// httpBackend talks to a real node over its REST API.
type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) CreateEntry(ctx context.Context, data any) (EntryHash, error) {
	var result struct {
		Hash EntryHash `json:"hash"`
	}
	err := b.client.PostJSON(ctx, routeEntries, map[string]any{"data": data}, &result)
	if err != nil {
		return "", mapTransportError("create entry", err)
	}
	if result.Hash == "" {
		return "", newError(CodeStorageError, "node returned no entry hash", nil)
	}
	return result.Hash, nil
}

func (b *httpBackend) GetEntry(ctx context.Context, hash EntryHash) (*Entry, error) {
	var entry Entry
	path := routeEntries + "/" + url.PathEscape(string(hash))
	if err := b.client.GetJSON(ctx, path, nil, &entry); err != nil {
		return nil, mapTransportError("get entry", err)
	}
	return &entry, nil
}

func (b *httpBackend) NodeInfo(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := b.client.GetJSON(ctx, routeInfo, nil, &info); err != nil {
		return nil, mapTransportError("get node info", err)
	}
	return &info, nil
}

func (b *httpBackend) Peers(ctx context.Context) ([]PeerInfo, error) {
	var peers []PeerInfo
	if err := b.client.GetJSON(ctx, routePeers, nil, &peers); err != nil {
		return nil, mapTransportError("get peers", err)
	}
	return peers, nil
}

func (b *httpBackend) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	var status SyncStatus
	if err := b.client.GetJSON(ctx, routeSync, nil, &status); err != nil {
		return nil, mapTransportError("get sync status", err)
	}
	return &status, nil
}

// mapTransportError classifies a request-channel failure into the SDK error
// taxonomy. The node's own error code wins when its envelope carries one we
// recognize; otherwise the HTTP status decides.
func mapTransportError(op string, err error) error {
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		message := op + ": " + ainapi.Summarize(httpErr.Body)
		code := codeFromEnvelope(httpErr.Body)
		if code == "" {
			code = codeFromStatus(httpErr.StatusCode)
		}
		if code == CodeNotFound {
			return newError(CodeNotFound, message, ErrNotFound)
		}
		return newError(code, message, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return newError(CodeTimeout, op+": request timed out", err)
	}
	return newError(CodeNetworkError, op+": request failed", err)
}

func codeFromEnvelope(body []byte) ErrorCode {
	payload := ainapi.ExtractError(body)
	if payload == nil {
		return ""
	}
	switch code := ErrorCode(payload.Code); code {
	case CodeConnectionFailed, CodeTimeout, CodeNotFound,
		CodeInvalidEntry, CodeStorageError, CodeNetworkError, CodeAuthError:
		return code
	default:
		return ""
	}
}

func codeFromStatus(status int) ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return CodeInvalidEntry
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return CodeAuthError
	case status == http.StatusRequestTimeout:
		return CodeTimeout
	default:
		return CodeStorageError
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
