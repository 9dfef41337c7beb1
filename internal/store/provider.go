// Package store persists ticket records behind a pluggable key/value
// provider. Redis is the usual backend; an embedded RocksDB backend exists
// for single-node installations without a redis to lean on.
package store

import "context"

// Provider is the raw key/value contract the ticket store is built on.
// Values are opaque strings (serialized records); batch operations must be
// safe to call concurrently for disjoint key sets.
type Provider interface {
	// BatchGet returns the values found for keys; absent keys are simply
	// missing from the result map.
	BatchGet(ctx context.Context, keys []string) (map[string]string, error)

	// BatchPut writes every item. Each key's value is written in a single
	// atomic operation; a record is never observable half-written.
	BatchPut(ctx context.Context, items map[string]string) error

	// BatchDelete removes keys; deleting an absent key is not an error.
	BatchDelete(ctx context.Context, keys []string) error

	Close() error
}

const chunkSize = 500

// splitToChunks cuts keys into slices of at most chunkSize so one huge
// batch cannot monopolize a provider connection.
func splitToChunks(keys []string) [][]string {
	if len(keys) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(keys)+chunkSize-1)/chunkSize)
	for len(keys) > chunkSize {
		chunks = append(chunks, keys[:chunkSize])
		keys = keys[chunkSize:]
	}
	return append(chunks, keys)
}

// splitItemsToChunks does the same for key/value maps.
func splitItemsToChunks(items map[string]string) []map[string]string {
	if len(items) == 0 {
		return nil
	}
	chunks := make([]map[string]string, 0, (len(items)+chunkSize-1)/chunkSize)
	current := make(map[string]string, chunkSize)
	for k, v := range items {
		current[k] = v
		if len(current) == chunkSize {
			chunks = append(chunks, current)
			current = make(map[string]string, chunkSize)
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
