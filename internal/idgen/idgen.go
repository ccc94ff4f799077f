// Package idgen generates the random record identifiers stored alongside
// each revision entry. An id is a hex string whose length equals the
// configured key digest width, mirroring the source's rand_hex_str(key_size).
package idgen

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// HexID returns a random lowercase hex string of exactly hexLen
// characters. hexLen is normally the configured key digest width (e.g.
// 20 for sha1), matching the width of the bucket's key field so ids and
// digests share a byte budget in fixed-width records.
func HexID(hexLen int) string {
	if hexLen <= 0 {
		return ""
	}

	byteLen := (hexLen + 1) / 2
	buf := make([]byte, 0, byteLen)
	for len(buf) < byteLen {
		id := uuid.New()
		buf = append(buf, id[:]...)
	}

	return hex.EncodeToString(buf[:byteLen])[:hexLen]
}
