package oracle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
)

// Cache stores oracle responses on disk keyed by a model+prompt digest.
// Identical queries across runs then resolve without a network call, which
// keeps re-runs deterministic and avoids re-billing the same question.
type Cache struct {
	Dir string
}

// KeyFrom builds a cache key from the model name and full prompt text.
func KeyFrom(model, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".txt")
}

// Get returns the cached response bytes if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil || c.Dir == "" {
		return nil, false
	}
	b, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return b, true
}

// Save writes response bytes to the cache. Failures are deliberately
// swallowed: the cache is an optimization, never a correctness dependency.
func (c *Cache) Save(key string, data []byte) {
	if c == nil || c.Dir == "" {
		return
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(c.path(key), data, 0o644)
}
