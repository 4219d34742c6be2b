package aingle

import "encoding/json"

// EntryHash is the content-derived identifier the node assigns to an entry
// on creation. Hashes returned by CreateEntry are valid lookup keys for
// GetEntry.
type EntryHash string

// Entry is a record stored in the AIngle DAG. Data carries the
// caller-supplied payload verbatim; the client does not interpret it.
type Entry struct {
	Hash      EntryHash       `json:"hash"`
	Author    string          `json:"author"`
	Parents   []EntryHash     `json:"parents"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Sequence  uint64          `json:"sequence"`
	Signature string          `json:"signature"`
}

// DecodeData unmarshals the entry payload into out.
func (e *Entry) DecodeData(out any) error {
	if len(e.Data) == 0 {
		return json.Unmarshal([]byte("null"), out)
	}
	return json.Unmarshal(e.Data, out)
}

// NodeInfo describes the remote node.
type NodeInfo struct {
	NodeID         string   `json:"node_id"`
	Version        string   `json:"version"`
	Uptime         int64    `json:"uptime"`
	EntriesCount   int64    `json:"entries_count"`
	PeersCount     int64    `json:"peers_count"`
	StorageBackend string   `json:"storage_backend"`
	Features       []string `json:"features"`
}

// PeerInfo describes one peer known to the node.
type PeerInfo struct {
	PeerID    string `json:"peer_id"`
	Address   string `json:"address"`
	Quality   int    `json:"quality"`
	LastSeen  int64  `json:"last_seen"`
	LatestSeq uint64 `json:"latest_seq"`
}

// SyncStatus reports the node's synchronization progress.
type SyncStatus struct {
	Syncing  bool  `json:"syncing"`
	Pending  int   `json:"pending"`
	LastSync int64 `json:"last_sync"`
}
