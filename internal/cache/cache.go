package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Entry is one remembered service reply
type Entry struct {
	Text  string
	Model string
}

// Cache defines the interface for reply caching
type Cache interface {
	Get(key string) (Entry, bool)
	Set(key string, entry Entry)
	Stats() (hits, misses int64)
}

// Key derives a cache key from the parts that determine a reply.
// Parts are length-prefixed so that ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range size {
			size[i] = byte(n >> (8 * i))
		}
		h.Write(size[:])
		h.Write([]byte(p))
	}
	return "gendataset:v1:" + hex.EncodeToString(h.Sum(nil))
}
