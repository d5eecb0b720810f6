package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RejectedEvent describes a transaction the ledger refused to apply.
type RejectedEvent struct {
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Entry is a single link in the rejection journal.
type Entry struct {
	Timestamp    string        `json:"timestamp"`
	RunID        string        `json:"run_id"`
	PreviousHash string        `json:"previous_hash"`
	Event        RejectedEvent `json:"event"`
	Hash         string        `json:"hash"`
}

// Chain records rejected events as a tamper-evident hash chain. Each run gets
// its own chain, identified by a fresh run id.
type Chain struct {
	mu           sync.Mutex
	runID        string
	previousHash string
	entries      []*Entry
}

// NewChain creates a chain initialized with a zero hash and a new run id.
func NewChain() *Chain {
	return &Chain{
		runID:        uuid.NewString(),
		previousHash: strings.Repeat("0", 64),
	}
}

// Append adds a rejected event to the chain and returns its entry.
func (c *Chain) Append(event RejectedEvent) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &Entry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		RunID:        c.runID,
		PreviousHash: c.previousHash,
		Event:        event,
	}
	entry.Hash = entryHash(entry)

	c.previousHash = entry.Hash
	c.entries = append(c.entries, entry)
	return entry
}

// RunID returns the chain's run identifier.
func (c *Chain) RunID() string {
	return c.runID
}

// Len returns the number of journaled rejections.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns a copy of the journal in append order.
func (c *Chain) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]*Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

func entryHash(e *Entry) string {
	input := fmt.Sprintf("%s|%s|%s|%d|%d|%s|%s",
		e.PreviousHash, e.RunID, e.Timestamp,
		e.Event.Client, e.Event.Tx, e.Event.Type, e.Event.Reason)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// VerifyChain checks if a slice of entries forms a valid hash chain.
func VerifyChain(entries []*Entry) bool {
	for i, entry := range entries {
		if i > 0 && entry.PreviousHash != entries[i-1].Hash {
			return false
		}
		if entryHash(entry) != entry.Hash {
			return false
		}
	}
	return true
}
