package mock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AIngleLab/aingle_sdk_go/internal/devseed"
	"github.com/AIngleLab/aingle_sdk_go/internal/httpx"
	"github.com/AIngleLab/aingle_sdk_go/pkg/aingle"
)

// Version reported by the mock node.
const Version = "1.0.0-mock"

type subscriber struct {
	id uint64
	fn func(*aingle.Entry)
}

// Node is an in-memory stand-in for an AIngle node. It implements
// aingle.Backend and aingle.Notifier, so a client built with
// aingle.WithBackend(mock.New()) supports the full surface including
// Subscribe, with notifications delivered synchronously on entry creation.
//
// Entry hashes are content-derived (sha256 over the canonical payload
// JSON), so creating the same payload twice yields the same hash and the
// second create is a no-op.
type Node struct {
	mu      sync.RWMutex
	entries map[aingle.EntryHash]*aingle.Entry
	order   []aingle.EntryHash
	peers   []aingle.PeerInfo
	subs    []*subscriber
	nextSub uint64
	seq     uint64

	nodeID   string
	author   string
	started  time.Time
	lastSync time.Time
	now      func() time.Time
}

// Option configures the mock node.
type Option func(*Node)

// WithClock overrides the clock used for timestamps and uptime.
func WithClock(fn func() time.Time) Option {
	return func(n *Node) {
		if fn != nil {
			n.now = fn
		}
	}
}

// WithNodeID fixes the node identifier instead of generating one.
func WithNodeID(id string) Option {
	return func(n *Node) {
		if id != "" {
			n.nodeID = id
		}
	}
}

// WithAuthor fixes the author key stamped on created entries.
func WithAuthor(author string) Option {
	return func(n *Node) {
		if author != "" {
			n.author = author
		}
	}
}

// New creates an empty mock node.
func New(opts ...Option) *Node {
	n := &Node{
		entries: make(map[aingle.EntryHash]*aingle.Entry),
		nodeID:  uuid.NewString(),
		author:  "agent:" + uuid.NewString(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	n.started = n.now()
	return n
}

func (n *Node) clock() time.Time {
	if n.now == nil {
		return time.Now().UTC()
	}
	return n.now()
}

// Seed loads initial entries without notifying subscribers.
func (n *Node) Seed(entries []devseed.EntrySeed) error {
	for _, e := range entries {
		var data any = e.Data
		author := e.Author
		if _, _, err := n.insert(data, author, e.Parents, false); err != nil {
			return err
		}
	}
	return nil
}

// AddPeer registers a synthetic peer reported by Peers and NodeInfo.
func (n *Node) AddPeer(peer aingle.PeerInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers = append(n.peers, peer)
}

// CreateEntry stores the payload and notifies subscribers. Part of
// aingle.Backend.
func (n *Node) CreateEntry(ctx context.Context, data any) (aingle.EntryHash, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	hash, entry, err := n.insert(data, "", nil, true)
	if err != nil {
		return "", err
	}
	if entry != nil {
		n.dispatch(entry)
	}
	return hash, nil
}

func (n *Node) insert(data any, author string, parents []string, fresh bool) (aingle.EntryHash, *aingle.Entry, error) {
	payload, err := httpx.MarshalJSON(data)
	if err != nil {
		return "", nil, &aingle.Error{
			Code:    aingle.CodeInvalidEntry,
			Message: "encode entry payload",
			Err:     err,
		}
	}

	sum := sha256.Sum256(payload)
	hash := aingle.EntryHash(hex.EncodeToString(sum[:]))

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.entries[hash]; exists {
		return hash, nil, nil
	}

	if author == "" {
		author = n.author
	}
	entryParents := make([]aingle.EntryHash, 0, len(parents)+1)
	for _, p := range parents {
		entryParents = append(entryParents, aingle.EntryHash(p))
	}
	if len(entryParents) == 0 && len(n.order) > 0 {
		// New entries hang off the current DAG tip.
		entryParents = append(entryParents, n.order[len(n.order)-1])
	}

	n.seq++
	now := n.clock()
	entry := &aingle.Entry{
		Hash:      hash,
		Author:    author,
		Parents:   entryParents,
		Data:      append([]byte(nil), payload...),
		Timestamp: now.Unix(),
		Sequence:  n.seq,
		Signature: signEntry(hash, author),
	}
	n.entries[hash] = entry
	n.order = append(n.order, hash)
	n.lastSync = now

	if !fresh {
		return hash, nil, nil
	}
	return hash, copyEntry(entry), nil
}

// GetEntry returns the entry stored under hash. Part of aingle.Backend.
func (n *Node) GetEntry(ctx context.Context, hash aingle.EntryHash) (*aingle.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	entry, ok := n.entries[hash]
	n.mu.RUnlock()
	if !ok {
		return nil, &aingle.Error{
			Code:    aingle.CodeNotFound,
			Message: "no entry for hash " + string(hash),
			Err:     aingle.ErrNotFound,
		}
	}
	return copyEntry(entry), nil
}

// NodeInfo describes the mock node. Part of aingle.Backend.
func (n *Node) NodeInfo(ctx context.Context) (*aingle.NodeInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	return &aingle.NodeInfo{
		NodeID:         n.nodeID,
		Version:        Version,
		Uptime:         int64(n.clock().Sub(n.started) / time.Second),
		EntriesCount:   int64(len(n.order)),
		PeersCount:     int64(len(n.peers)),
		StorageBackend: "memory",
		Features:       []string{"entries", "subscriptions"},
	}, nil
}

// Peers lists the synthetic peers registered via AddPeer. Part of
// aingle.Backend.
func (n *Node) Peers(ctx context.Context) ([]aingle.PeerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	peers := make([]aingle.PeerInfo, len(n.peers))
	copy(peers, n.peers)
	return peers, nil
}

// SyncStatus reports the mock's synchronization state. Part of
// aingle.Backend.
func (n *Node) SyncStatus(ctx context.Context) (*aingle.SyncStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	status := &aingle.SyncStatus{}
	if !n.lastSync.IsZero() {
		status.LastSync = n.lastSync.Unix()
	}
	return status, nil
}

// Notify registers fn for entry-creation notifications. Part of
// aingle.Notifier. The returned cancel is idempotent.
func (n *Node) Notify(fn func(*aingle.Entry)) (aingle.UnsubscribeFunc, error) {
	n.mu.Lock()
	n.nextSub++
	sub := &subscriber{id: n.nextSub, fn: fn}
	n.subs = append(n.subs, sub)
	id := sub.id
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}, nil
}

func (n *Node) dispatch(entry *aingle.Entry) {
	n.mu.RLock()
	subs := make([]*subscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(copyEntry(entry))
	}
}

func copyEntry(e *aingle.Entry) *aingle.Entry {
	out := *e
	out.Parents = append([]aingle.EntryHash(nil), e.Parents...)
	out.Data = append([]byte(nil), e.Data...)
	return &out
}

func signEntry(hash aingle.EntryHash, author string) string {
	sum := sha256.Sum256([]byte(string(hash) + "|" + author))
	return "mock:" + hex.EncodeToString(sum[:8])
}
