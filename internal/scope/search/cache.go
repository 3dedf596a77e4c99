package search

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
)

// Cache is a thread-safe holder for the session's search index.
// Stored slices are never mutated after Store, so readers share them.
type Cache struct {
	mu          sync.RWMutex
	index       []IndexedTest
	fingerprint string
	built       bool
	builtAt     time.Time
}

// NewCache creates a new empty cache
func NewCache() *Cache {
	return &Cache{}
}

// Store replaces the cached index
func (c *Cache) Store(index []IndexedTest, fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = index
	c.fingerprint = fingerprint
	c.built = true
	c.builtAt = time.Now()
}

// Snapshot returns the current index; nil until built
func (c *Cache) Snapshot() []IndexedTest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Built reports whether an index has been stored
func (c *Cache) Built() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.built
}

// Fingerprint returns the content hash of the cached tests
func (c *Cache) Fingerprint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fingerprint
}

// BuiltAt returns when the index was stored
func (c *Cache) BuiltAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builtAt
}

// Count returns the number of cached tests
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}

// Clear drops the cached index
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.fingerprint = ""
	c.built = false
	c.builtAt = time.Time{}
}

// Fingerprint hashes every searchable field of tests, in order.
// Equal fingerprints mean BuildIndex would produce an equivalent index.
func Fingerprint(tests []catalog.TestDocument) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	for _, t := range tests {
		write(t.ID)
		write(t.Title)
		write(t.Description)
		write(t.Invalid)
		for _, s := range t.Sections {
			write(s.Name)
			for _, q := range s.Questions {
				write(q.Question)
				write(q.Explanation)
				write(q.Passage)
				for _, o := range q.Options {
					write(o.Content)
				}
				h.Write([]byte{1}) // end of question
			}
			h.Write([]byte{2}) // end of section
		}
		h.Write([]byte{3}) // end of test
	}

	return hex.EncodeToString(h.Sum(nil))
}
