package action

import "github.com/cespare/xxhash/v2"

// StableHash is the fixed, non-cryptographic hash used for WEIGHTED
// sticky-routing: a documented bytes-in/bytes-out function that stays
// fixed across recompiles of the same rule so the same key always
// buckets the same way.
//
// Bytes in: the UTF-8 encoding of key. Bytes out: the 64-bit xxHash
// digest, little-endian as produced by github.com/cespare/xxhash/v2.
func StableHash(key string) uint64 {
	return xxhash.Sum64String(key)
}
