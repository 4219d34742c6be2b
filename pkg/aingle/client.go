package aingle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/AIngleLab/aingle_sdk_go/internal/httpx"
)

// Defaults applied when construction options leave a field unset.
const (
	DefaultNodeURL   = "http://localhost:8080"
	DefaultSocketURL = "ws://localhost:8081"
	DefaultTimeout   = 30 * time.Second
)

// Config holds the client configuration. It is fixed at construction and
// read-only for the client's lifetime.
type Config struct {
	// NodeURL is the base URL of the node's HTTP API.
	NodeURL string
	// SocketURL is the WebSocket endpoint delivering push notifications.
	SocketURL string
	// Timeout bounds every HTTP request issued by the client.
	Timeout time.Duration
	// Debug enables verbose diagnostics. It never changes control flow or
	// error semantics.
	Debug bool
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		NodeURL:   DefaultNodeURL,
		SocketURL: DefaultSocketURL,
		Timeout:   DefaultTimeout,
	}
}

// Backend abstracts the node's request/response API so the HTTP transport
// can be swapped for an in-memory mock.
type Backend interface {
	CreateEntry(ctx context.Context, data any) (EntryHash, error)
	GetEntry(ctx context.Context, hash EntryHash) (*Entry, error)
	NodeInfo(ctx context.Context) (*NodeInfo, error)
	Peers(ctx context.Context) ([]PeerInfo, error)
	SyncStatus(ctx context.Context) (*SyncStatus, error)
}

// Notifier is implemented by backends that deliver push notifications
// without a socket channel (mocks). When the client's backend implements
// Notifier, Subscribe routes through it and no socket is dialed.
type Notifier interface {
	Notify(fn func(*Entry)) (UnsubscribeFunc, error)
}

type options struct {
	cfg        Config
	logger     log.Logger
	httpClient *http.Client
	retry      *httpx.RetryPolicy
	errorChan  chan<- error
	backend    Backend
}

// Option configures a Client at construction time.
type Option func(*options)

// WithNodeURL sets the base URL of the node's HTTP API.
func WithNodeURL(u string) Option {
	return func(o *options) { o.cfg.NodeURL = u }
}

// WithSocketURL sets the WebSocket endpoint for push notifications.
func WithSocketURL(u string) Option {
	return func(o *options) { o.cfg.SocketURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.Timeout = d }
}

// WithDebug toggles verbose diagnostics.
func WithDebug(debug bool) Option {
	return func(o *options) { o.cfg.Debug = debug }
}

// WithLogger supplies the logger receiving diagnostics. Without it, debug
// mode logs logfmt to stderr and normal mode discards everything.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient overrides the HTTP client used for the request channel.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpClient = h }
}

// WithRetryPolicy overrides the transient-failure retry policy of the
// request channel.
func WithRetryPolicy(policy httpx.RetryPolicy) Option {
	return func(o *options) { o.retry = &policy }
}

// WithErrorChan supplies a channel receiving asynchronous socket failures.
// Sends never block; when the channel is full the failure is dropped after
// being logged.
func WithErrorChan(ch chan<- error) Option {
	return func(o *options) { o.errorChan = ch }
}

// WithBackend replaces the HTTP transport entirely, e.g. with mock.New().
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// Client mediates between caller code and an AIngle node: an HTTP request
// channel for entry operations and an optional socket channel for push
// notifications. It is safe for concurrent use by multiple goroutines.
type Client struct {
	cfg       Config
	backend   Backend
	logger    log.Logger
	errorChan chan<- error

	mu   sync.Mutex
	sock *socket

	subMu   sync.Mutex
	subs    []*subscription
	nextSub uint64
}

// New constructs a Client. No connection is opened; the socket channel is
// established by Connect or implicitly by Subscribe.
func New(opts ...Option) (*Client, error) {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg.Timeout <= 0 {
		o.cfg.Timeout = DefaultTimeout
	}

	logger := o.logger
	if logger == nil {
		if o.cfg.Debug {
			logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		} else {
			logger = log.NewNopLogger()
		}
	}
	if !o.cfg.Debug {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	backend := o.backend
	if backend == nil {
		hopts := []httpx.Option{}
		if o.httpClient != nil {
			hopts = append(hopts, httpx.WithHTTPClient(o.httpClient))
		}
		hopts = append(hopts, httpx.WithTimeout(o.cfg.Timeout))
		if o.retry != nil {
			hopts = append(hopts, httpx.WithRetryPolicy(*o.retry))
		}
		hc, err := httpx.NewClient(o.cfg.NodeURL, hopts...)
		if err != nil {
			return nil, fmt.Errorf("aingle: %w", err)
		}
		backend = &httpBackend{client: hc}
	}

	return &Client{
		cfg:       o.cfg,
		backend:   backend,
		logger:    logger,
		errorChan: o.errorChan,
	}, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Connect establishes the socket channel to the configured socket URL. It is
// a no-op when already connected. Clients running against a Notifier backend
// have no socket channel and Connect succeeds immediately.
func (c *Client) Connect(ctx context.Context) error {
	if _, ok := c.backend.(Notifier); ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock != nil {
		return nil
	}

	level.Debug(c.logger).Log("msg", "dialing socket", "url", c.cfg.SocketURL)
	s, err := dialSocket(ctx, c.cfg.SocketURL, c.logger, c.errorChan, c.dispatch, c.dropSocket)
	if err != nil {
		return newError(CodeConnectionFailed, "dial "+c.cfg.SocketURL+": "+err.Error(), ErrNotConnected)
	}
	c.sock = s
	return nil
}

// Disconnect tears down the socket channel and releases all subscriptions.
// It is safe to call whether or not a connection is open, and safe to call
// repeatedly.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	s := c.sock
	c.sock = nil
	c.mu.Unlock()

	c.subMu.Lock()
	subs := c.subs
	c.subs = nil
	c.subMu.Unlock()
	for _, sub := range subs {
		if sub.cancel != nil {
			sub.cancel()
		}
	}

	if s == nil {
		return nil
	}
	level.Debug(c.logger).Log("msg", "closing socket")
	s.close()
	return nil
}

// Close implements io.Closer as an alias for Disconnect.
func (c *Client) Close() error {
	return c.Disconnect()
}

// Connected reports whether the socket channel is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock != nil
}

// CreateEntry submits the payload to the node and returns the
// content-derived hash assigned to the new entry.
func (c *Client) CreateEntry(ctx context.Context, data any) (EntryHash, error) {
	hash, err := c.backend.CreateEntry(ctx, data)
	if err != nil {
		return "", err
	}
	level.Debug(c.logger).Log("msg", "entry created", "hash", hash)
	return hash, nil
}

// GetEntry retrieves the entry stored under hash. Unknown hashes fail with
// an error satisfying errors.Is(err, ErrNotFound).
func (c *Client) GetEntry(ctx context.Context, hash EntryHash) (*Entry, error) {
	if hash == "" {
		return nil, newError(CodeInvalidEntry, "entry hash is required", nil)
	}
	entry, err := c.backend.GetEntry(ctx, hash)
	if err != nil {
		return nil, err
	}
	level.Debug(c.logger).Log("msg", "entry fetched", "hash", hash, "seq", entry.Sequence)
	return entry, nil
}

// NodeInfo retrieves the node's descriptor.
func (c *Client) NodeInfo(ctx context.Context) (*NodeInfo, error) {
	info, err := c.backend.NodeInfo(ctx)
	if err != nil {
		return nil, err
	}
	level.Debug(c.logger).Log("msg", "node info fetched", "node_id", info.NodeID, "version", info.Version)
	return info, nil
}

// Peers retrieves the peers currently known to the node.
func (c *Client) Peers(ctx context.Context) ([]PeerInfo, error) {
	return c.backend.Peers(ctx)
}

// SyncStatus retrieves the node's synchronization progress.
func (c *Client) SyncStatus(ctx context.Context) (*SyncStatus, error) {
	return c.backend.SyncStatus(ctx)
}

// Subscribe registers fn to be invoked once per push notification, in
// arrival order. When the socket channel is not yet open it is dialed
// implicitly. The returned cancellation func deregisters fn and is
// idempotent. All subscriptions are released by Disconnect.
func (c *Client) Subscribe(ctx context.Context, fn func(*Entry)) (UnsubscribeFunc, error) {
	if fn == nil {
		return nil, errors.New("aingle: subscribe callback is nil")
	}
	if n, ok := c.backend.(Notifier); ok {
		// The backend delivers notifications itself; register here only so
		// Disconnect can release the backend-side registration.
		cancel, err := n.Notify(fn)
		if err != nil {
			return nil, err
		}
		c.subMu.Lock()
		c.nextSub++
		sub := &subscription{id: c.nextSub, fn: fn, cancel: cancel}
		c.subs = append(c.subs, sub)
		id := sub.id
		c.subMu.Unlock()
		return func() { c.removeSub(id) }, nil
	}

	// Register before dialing so no notification read after the dial can be
	// missed.
	c.subMu.Lock()
	c.nextSub++
	sub := &subscription{id: c.nextSub, fn: fn}
	c.subs = append(c.subs, sub)
	id := sub.id
	c.subMu.Unlock()

	if err := c.Connect(ctx); err != nil {
		c.removeSub(id)
		return nil, err
	}
	return func() { c.removeSub(id) }, nil
}

func (c *Client) removeSub(id uint64) {
	c.subMu.Lock()
	var cancel UnsubscribeFunc
	for i, sub := range c.subs {
		if sub.id == id {
			cancel = sub.cancel
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.subMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// dispatch fans one notification out to the registered callbacks. It runs
// on the socket read loop, so invocation order follows arrival order.
func (c *Client) dispatch(entry *Entry) {
	c.subMu.Lock()
	subs := make([]*subscription, len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, sub := range subs {
		e := *entry
		e.Parents = append([]EntryHash(nil), entry.Parents...)
		e.Data = append([]byte(nil), entry.Data...)
		sub.fn(&e)
	}
}

// dropSocket clears the client's socket reference once its read loop exits,
// so a later Connect can re-dial.
func (c *Client) dropSocket(s *socket) {
	c.mu.Lock()
	if c.sock == s {
		c.sock = nil
	}
	c.mu.Unlock()
}
