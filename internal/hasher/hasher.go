// Package hasher implements the two distinct hash roles a shard file
// needs: a cheap, non-cryptographic hash for bucket addressing
// (hash_i(key), grounded on the source's calc_position) and a
// cryptographic digest for the bucket's key field, used to disambiguate
// keys that address the same slot.
package hasher

import (
	"github.com/cespare/xxhash/v2"
	"github.com/thatch45/maras-go/internal/hashreg"
)

// BucketIndex returns hash_i(key) & hashLimit: the zero-based bucket
// index within a shard's fixed bucket array.
func BucketIndex(key string, hashLimit uint64) uint64 {
	return xxhash.Sum64String(key) & hashLimit
}

// SlotOffset returns the byte offset of key's bucket slot within a shard
// file, per slot_offset(k) = header_len + (hash_i(k) & hash_limit) * bucket_size.
func SlotOffset(key string, hashLimit uint64, bucketSize, headerLen int64) int64 {
	idx := BucketIndex(key, hashLimit)
	return headerLen + int64(idx)*bucketSize
}

// Digest computes the cryptographic digest of key using the named hash,
// for storage in the bucket's key field. name must already be validated
// (see options.Options.Validate / hashreg.Lookup).
func Digest(name, key string) ([]byte, error) {
	if _, err := hashreg.Lookup(name); err != nil {
		return nil, err
	}
	return hashreg.Digest(name, []byte(key)), nil
}
