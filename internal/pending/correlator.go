// Package pending tracks messages the bot sent that expect a follow-up
// reply, keyed by the platform message ID.
package pending

import (
	"container/heap"
	"sync"
	"time"
)

type Entry struct {
	Command string
	// AuthorID is the user the follow-up is expected from.
	AuthorID      string
	RequireAuthor bool
	Data          any
	ExpiresAt     time.Time
}

// AcceptsFrom reports whether a reply by userID may consume the entry.
func (e Entry) AcceptsFrom(userID string) bool {
	return !e.RequireAuthor || e.AuthorID == userID
}

func Key(threadID, messageID string) string {
	return threadID + ":" + messageID
}

type slot struct {
	entry      Entry
	generation uint64
}

// Correlator is a TTL-indexed map. Expired entries are invisible to lookups
// and are physically removed by Sweep.
type Correlator struct {
	mu      sync.Mutex
	entries map[string]slot
	queue   expiryQueue
	gen     uint64
	now     func() time.Time
}

func NewCorrelator() *Correlator {
	return NewCorrelatorWithClock(time.Now)
}

func NewCorrelatorWithClock(now func() time.Time) *Correlator {
	return &Correlator{
		entries: make(map[string]slot),
		now:     now,
	}
}

// Register stores e under key for ttl. Registering an existing key
// overwrites it and restarts its expiry.
func (c *Correlator) Register(key string, e Entry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	e.ExpiresAt = c.now().Add(ttl)
	c.entries[key] = slot{entry: e, generation: c.gen}
	heap.Push(&c.queue, expiry{key: key, at: e.ExpiresAt, generation: c.gen})
}

// Resolve looks an entry up without removing it.
func (c *Correlator) Resolve(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveLocked(key)
}

// Consume looks an entry up and removes it.
func (c *Correlator) Consume(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.liveLocked(key)
	if ok {
		delete(c.entries, key)
	}
	return e, ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *Correlator) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes every entry that expired at or before now and returns how
// many were removed. Heap records left behind by overwrites or deletes are
// discarded without counting.
func (c *Correlator) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for c.queue.Len() > 0 && !c.queue[0].at.After(now) {
		exp := heap.Pop(&c.queue).(expiry)
		s, ok := c.entries[exp.key]
		if !ok || s.generation != exp.generation {
			continue
		}
		delete(c.entries, exp.key)
		removed++
	}
	return removed
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Correlator) liveLocked(key string) (Entry, bool) {
	s, ok := c.entries[key]
	if !ok || !s.entry.ExpiresAt.After(c.now()) {
		return Entry{}, false
	}
	return s.entry, true
}

type expiry struct {
	key        string
	at         time.Time
	generation uint64
}

type expiryQueue []expiry

func (q expiryQueue) Len() int           { return len(q) }
func (q expiryQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q expiryQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *expiryQueue) Push(x any) {
	*q = append(*q, x.(expiry))
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
