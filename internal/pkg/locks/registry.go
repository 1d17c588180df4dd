// Package locks provides a fixed-size pool of mutexes keyed by string.
// Callers that must serialize work per order take the shard its id hashes
// to; memory stays bounded no matter how many ids pass through.
package locks

import (
	"hash/fnv"
	"sync"
)

const defaultShardCount = 256

// Registry maps string keys onto a bounded set of mutex shards.
// Two distinct keys may share a shard; that costs contention, never safety.
type Registry struct {
	shards []sync.Mutex
}

// NewRegistry creates a Registry with the given number of shards.
// A non-positive count falls back to the default.
func NewRegistry(shardCount int) *Registry {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	return &Registry{shards: make([]sync.Mutex, shardCount)}
}

// Lock acquires the shard the key hashes to and returns its unlock func.
func (r *Registry) Lock(key string) func() {
	shard := &r.shards[r.shardFor(key)]
	shard.Lock()
	return shard.Unlock
}

// shardFor hashes the key with FNV-1a and maps it onto a shard index.
func (r *Registry) shardFor(key string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum64() % uint64(len(r.shards)))
}
