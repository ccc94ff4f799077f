// Package options provides data structures and functions for configuring
// a maras database. It defines the parameters that control where a
// database lives on disk, how its bucket arrays are addressed, how keys
// are digested, and how aggressively it syncs writes to durable storage.
package options

import (
	"strings"
)

// Options holds the configuration parameters for a database. Most of
// these are serialized into the meta file at create time, so they cannot
// be changed after create without invalidating every shard file written
// under the old configuration.
type Options struct {
	// DataDir is the base path under which the database directory, its
	// shard sets, and its meta file are stored. Not part of the
	// serialized meta header: it names where the database lives, not
	// how it is addressed.
	//
	// Default: "/var/lib/marasdb"
	DataDir string `json:"dataDir" msgpack:"-"`

	// HashLimit is the per-shard bucket-count mask. It must be of the
	// form 2^n - 1 so that `hash_i(key) & HashLimit` lands within the
	// fixed bucket array.
	//
	// Default: 0xfffff
	HashLimit uint64 `json:"hashLimit" msgpack:"hash_limit"`

	// KeyHash names the cryptographic hash used to digest keys for the
	// bucket's key field (exact-match comparison on collision).
	//
	// Default: "sha1"
	KeyHash string `json:"keyHash" msgpack:"key_hash"`

	// Fmt is the bucket pack format descriptor, e.g. ">KsQ": a digest
	// byte string sized by KeyHash's digest width, followed by an
	// 8-byte big-endian field.
	//
	// Default: ">KsQ"
	Fmt string `json:"fmt" msgpack:"fmt"`

	// EntryMap names each field produced by Fmt, in order.
	//
	// Default: ["key", "prev"]
	EntryMap []string `json:"entryMap" msgpack:"entry_map"`

	// HeaderLen is the number of bytes reserved for the header region of
	// every shard and meta file. Value files have no header region.
	//
	// Default: 1024
	HeaderLen int `json:"headerLen" msgpack:"header_len"`

	// KeyDelim separates path segments within a key when deriving the
	// shard-set directory for that key.
	//
	// Default: "/"
	KeyDelim string `json:"keyDelim" msgpack:"key_delim"`

	// OpenFd is the advisory cap on simultaneously open file descriptors
	// per descriptor cache (one shard-file cache per registered index, one
	// value-file cache). The cache evicts the least-recently-used descriptor once
	// this is exceeded.
	//
	// Default: 512
	OpenFd int `json:"openFd" msgpack:"open_fd"`

	// Sync, if true, fsyncs after every write to a shard or value file.
	//
	// Default: true
	Sync bool `json:"sync" msgpack:"sync"`

	// FirstIndexOnly, if true, restricts Insert to the first registered
	// index (in AddIndex call order) instead of writing to every
	// registered index. This mirrors original_source's db.py, whose
	// insert loop returns after its first iteration; SPEC_FULL.md keeps
	// the all-indexes behavior as the default and exposes this as an
	// opt-in compatibility switch.
	//
	// Default: false
	FirstIndexOnly bool `json:"firstIndexOnly" msgpack:"first_index_only"`
}

// OptionFunc is a function type that modifies the database's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration
// values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		*o = NewDefaultOptions()
	}
}

// WithDataDir sets the base directory under which the database lives.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithHashLimit sets the per-shard bucket-count mask. Values that are not
// of the form 2^n - 1 are rejected at validation time, not here; this
// setter only assigns the raw value.
func WithHashLimit(limit uint64) OptionFunc {
	return func(o *Options) {
		o.HashLimit = limit
	}
}

// WithKeyHash sets the cryptographic hash name used for key digests.
func WithKeyHash(name string) OptionFunc {
	return func(o *Options) {
		name = strings.TrimSpace(name)
		if name != "" {
			o.KeyHash = name
		}
	}
}

// WithFmt sets the bucket pack format descriptor.
func WithFmt(format string) OptionFunc {
	return func(o *Options) {
		format = strings.TrimSpace(format)
		if format != "" {
			o.Fmt = format
		}
	}
}

// WithEntryMap sets the ordered list of bucket field names.
func WithEntryMap(fields []string) OptionFunc {
	return func(o *Options) {
		if len(fields) > 0 {
			o.EntryMap = append([]string(nil), fields...)
		}
	}
}

// WithHeaderLen sets the byte length reserved for each file's header region.
func WithHeaderLen(length int) OptionFunc {
	return func(o *Options) {
		if length > 0 {
			o.HeaderLen = length
		}
	}
}

// WithKeyDelim sets the path separator used within keys.
func WithKeyDelim(delim string) OptionFunc {
	return func(o *Options) {
		if delim != "" {
			o.KeyDelim = delim
		}
	}
}

// WithOpenFd sets the advisory cap on simultaneously open file descriptors.
func WithOpenFd(n int) OptionFunc {
	return func(o *Options) {
		if n > 0 {
			o.OpenFd = n
		}
	}
}

// WithSync sets whether every write is followed by an fsync.
func WithSync(sync bool) OptionFunc {
	return func(o *Options) {
		o.Sync = sync
	}
}

// WithFirstIndexOnly restricts Insert to the first registered index,
// matching original_source's single-return insert loop instead of the
// default all-indexes behavior.
func WithFirstIndexOnly() OptionFunc {
	return func(o *Options) {
		o.FirstIndexOnly = true
	}
}
