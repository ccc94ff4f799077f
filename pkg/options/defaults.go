package options

const (
	// DefaultDataDir specifies the default base directory where a maras
	// database will store its data files.
	DefaultDataDir = "/var/lib/marasdb"

	// DefaultHashLimit is the default per-shard bucket-count mask: 2^20 - 1.
	DefaultHashLimit uint64 = 0xfffff

	// DefaultKeyHash is the default cryptographic hash used for key digests.
	DefaultKeyHash = "sha1"

	// DefaultFmt is the default bucket pack format descriptor: a digest
	// byte string followed by an 8-byte big-endian revision pointer.
	DefaultFmt = ">KsQ"

	// DefaultHeaderLen is the default number of bytes reserved for the
	// header region of every shard and meta file.
	DefaultHeaderLen = 1024

	// DefaultKeyDelim is the default path separator within keys.
	DefaultKeyDelim = "/"

	// DefaultOpenFd is the default advisory cap on simultaneously open
	// file descriptors per descriptor cache.
	DefaultOpenFd = 512

	// DefaultSync is the default durability mode: fsync after every write.
	DefaultSync = true

	// DefaultFirstIndexOnly keeps Insert writing to every registered
	// index, per SPEC_FULL.md's resolution of the source's ambiguous
	// per-index insert loop.
	DefaultFirstIndexOnly = false
)

// DefaultEntryMap names the fields produced by DefaultFmt, in order.
var DefaultEntryMap = []string{"key", "prev"}

// defaultOptions holds the default configuration settings for a database.
var defaultOptions = Options{
	DataDir:        DefaultDataDir,
	HashLimit:      DefaultHashLimit,
	KeyHash:        DefaultKeyHash,
	Fmt:            DefaultFmt,
	EntryMap:       DefaultEntryMap,
	HeaderLen:      DefaultHeaderLen,
	KeyDelim:       DefaultKeyDelim,
	OpenFd:         DefaultOpenFd,
	Sync:           DefaultSync,
	FirstIndexOnly: DefaultFirstIndexOnly,
}

// NewDefaultOptions returns a copy of the default database configuration.
func NewDefaultOptions() Options {
	opts := defaultOptions
	opts.EntryMap = append([]string(nil), defaultOptions.EntryMap...)
	return opts
}
