// Command aingle-sandbox runs a standalone mock AIngle node for local
// development: the REST API on one listener and the push-notification
// socket on another, with optional latency and failure injection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"

	"github.com/AIngleLab/aingle_sdk_go/internal/devseed"
	"github.com/AIngleLab/aingle_sdk_go/pkg/aingle"
	"github.com/AIngleLab/aingle_sdk_go/pkg/aingle/mock"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP API listen address")
	wsAddr := flag.String("ws-addr", ":8081", "push socket listen address")
	seed := flag.String("seed", "", "path to JSON entry seed file")
	latency := flag.Duration("latency", 0, "artificial latency injected per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	flag.Parse()

	node := mock.New()
	if *seed != "" {
		entries, err := devseed.LoadEntrySeed(*seed)
		if err != nil {
			log.Fatalf("load seed: %v", err)
		}
		if err := node.Seed(entries); err != nil {
			log.Fatalf("apply seed: %v", err)
		}
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatalf("parse fail flag: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/entries", withMiddleware(*latency, failCfg, handleEntries(node)))
	mux.HandleFunc("/api/v1/entries/", withMiddleware(*latency, failCfg, handleEntryByHash(node)))
	mux.HandleFunc("/api/v1/info", withMiddleware(*latency, failCfg, handleInfo(node)))
	mux.HandleFunc("/api/v1/peers", withMiddleware(*latency, failCfg, handlePeers(node)))
	mux.HandleFunc("/api/v1/sync", withMiddleware(*latency, failCfg, handleSync(node)))

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/", handleSocket(node))

	apiSrv := &http.Server{Addr: *addr, Handler: mux}
	sockSrv := &http.Server{Addr: *wsAddr, Handler: wsMux}

	errCh := make(chan error, 2)
	go func() {
		log.Printf("aingle-sandbox: API listening on %s", *addr)
		errCh <- apiSrv.ListenAndServe()
	}()
	go func() {
		log.Printf("aingle-sandbox: socket listening on %s", *wsAddr)
		errCh <- sockSrv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	case <-sig:
		log.Printf("aingle-sandbox: shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(ctx)
	_ = sockSrv.Shutdown(ctx)
}

func handleEntries(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "INVALID_ENTRY", "POST required")
			return
		}
		defer r.Body.Close()

		var payload struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ENTRY", "malformed request body: "+err.Error())
			return
		}
		if len(payload.Data) == 0 {
			writeError(w, http.StatusBadRequest, "INVALID_ENTRY", "data field is required")
			return
		}

		hash, err := node.CreateEntry(r.Context(), payload.Data)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"hash": hash})
	}
}

func handleEntryByHash(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "INVALID_ENTRY", "GET required")
			return
		}
		hash := strings.TrimPrefix(r.URL.Path, "/api/v1/entries/")
		if hash == "" {
			writeError(w, http.StatusBadRequest, "INVALID_ENTRY", "entry hash is required")
			return
		}

		entry, err := node.GetEntry(r.Context(), aingle.EntryHash(hash))
		if err != nil {
			if aingle.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "no entry for hash "+hash)
				return
			}
			writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func handleInfo(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := node.NodeInfo(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func handlePeers(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peers, err := node.Peers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, peers)
	}
}

func handleSync(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := node.SyncStatus(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "STORAGE_ERROR", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func handleSocket(node *mock.Node) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Printf("socket accept: %v", err)
			return
		}

		// CloseRead pumps control frames and cancels the context when the
		// peer goes away.
		ctx := conn.CloseRead(r.Context())

		feed := make(chan *aingle.Entry, 64)
		cancel, err := node.Notify(func(e *aingle.Entry) {
			select {
			case feed <- e:
			default:
				// Slow consumer; drop rather than stall entry creation.
			}
		})
		if err != nil {
			conn.Close(websocket.StatusInternalError, "notify setup failed")
			return
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case entry := <-feed:
				data, err := json.Marshal(entry)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					return
				}
			}
		}
	}
}

func withMiddleware(latency time.Duration, fail *failConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if latency > 0 {
			time.Sleep(latency)
		}
		if fail != nil && rand.Float64() < fail.rate {
			writeError(w, fail.code, "STORAGE_ERROR", "injected failure")
			return
		}
		next(w, r)
	}
}

func parseFailConfig(raw string) (*failConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	cfg := &failConfig{code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed fail part %q", part)
		}
		switch strings.TrimSpace(kv[0]) {
		case "rate":
			rate, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
			if err != nil || rate < 0 || rate > 1 {
				return nil, fmt.Errorf("fail rate must be in [0,1]: %q", kv[1])
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(strings.TrimSpace(kv[1]))
			if err != nil || code < 400 || code > 599 {
				return nil, fmt.Errorf("fail code must be an HTTP error status: %q", kv[1])
			}
			cfg.code = code
		default:
			return nil, fmt.Errorf("unknown fail key %q", kv[0])
		}
	}
	return cfg, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
