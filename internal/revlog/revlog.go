// Package revlog defines the revision entry record appended to a shard
// file's tail region on every insert, and the helpers that walk the
// per-key linked list those entries form via their Prev pointer.
package revlog

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/thatch45/maras-go/internal/codec"
)

// Entry is one revision record: key, st, sz, rev, t, p, id from
// spec.md's data model, named to match the msgpack field names the
// source writes.
type Entry struct {
	Key  string `msgpack:"key"`
	St   int64  `msgpack:"st"`
	Sz   int64  `msgpack:"sz"`
	Rev  uint64 `msgpack:"rev"`
	Type string `msgpack:"t"`
	Prev int64  `msgpack:"p"`
	ID   string `msgpack:"id"`
}

// revCounter is a per-process monotonic source for Entry.Rev. It is
// seeded from the wall-clock nanosecond at first use so that revision
// numbers are both monotonically increasing within a process and,
// absent clock skew, unlikely to collide across a process restart.
var revCounter atomic.Uint64

// NextRev returns the next revision token, advancing the shared counter.
func NextRev() uint64 {
	for {
		cur := revCounter.Load()
		base := cur
		if base == 0 {
			base = uint64(time.Now().UnixNano())
		}
		next := base + 1
		if revCounter.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Encode serializes e as a length-prefixed record, ready to append to a
// shard file's tail region.
func Encode(e Entry) ([]byte, error) {
	raw, err := codec.EncodeRecord(e)
	if err != nil {
		return nil, fmt.Errorf("revlog: encode entry: %w", err)
	}
	return raw, nil
}

// ReadAt reads one length-prefixed Entry from r, which must already be
// positioned at the entry's first byte (its Prev offset), and returns
// the entry plus the number of bytes consumed.
func ReadAt(r io.Reader) (Entry, int, error) {
	var e Entry
	n, err := codec.ReadRecord(r, &e)
	if err != nil {
		return Entry{}, 0, fmt.Errorf("revlog: read entry: %w", err)
	}
	return e, n, nil
}

// Chain walks a key's revision list starting from head (the bucket's
// prev field, or a non-positive value for an empty chain), using read
// to fetch the entry found at a given file offset. It returns entries
// most-recent-first, matching the natural order of following Prev
// pointers backward from the bucket.
func Chain(head int64, read func(offset int64) (Entry, error)) ([]Entry, error) {
	var entries []Entry
	offset := head
	for offset > 0 {
		entry, err := read(offset)
		if err != nil {
			return entries, fmt.Errorf("revlog: read chain at offset %d: %w", offset, err)
		}
		entries = append(entries, entry)
		offset = entry.Prev
	}
	return entries, nil
}
