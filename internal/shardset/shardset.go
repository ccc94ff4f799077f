// Package shardset resolves a key to its shard file, probing midx_1,
// midx_2, … within the key's shard-set directory until it finds either
// an empty slot (a brand-new key) or a slot whose stored digest matches
// the key (an existing key), opening and creating shard files on
// demand. It is grounded on the source's DHM.hash_map_ref /
// DHM._get_h_entry collision-probing loop, adapted to hold an
// internal/fdcache-backed LRU pool of open *shardfile.ShardFile instead
// of an unbounded map.
package shardset

import (
	"bytes"
	"os"

	"github.com/thatch45/maras-go/internal/bucket"
	"github.com/thatch45/maras-go/internal/fdcache"
	"github.com/thatch45/maras-go/internal/hasher"
	"github.com/thatch45/maras-go/internal/shardaddr"
	"github.com/thatch45/maras-go/internal/shardfile"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"go.uber.org/zap"
)

// Config carries the parsed database configuration needed to create and
// interpret shard files.
type Config struct {
	HashLimit  uint64
	KeyHash    string
	Fmt        string
	EntryMap   []string
	HeaderLen  int
	KeyDelim   string
	Format     *bucket.Format
	BucketSize int
	Logger     *zap.SugaredLogger
}

// Set manages every open shard file under one database root, keyed by
// absolute midx_N path.
type Set struct {
	root  string
	cfg   Config
	files *fdcache.Cache[*shardfile.ShardFile]
}

// New creates a Set rooted at root. openFd bounds the number of
// simultaneously open midx_N descriptors; the least-recently-used one
// is closed once the cache exceeds that bound. It rejects a missing
// root or a Config without a parsed bucket Format or key-hash name.
func New(root string, cfg Config, openFd int) (*Set, error) {
	if root == "" {
		return nil, marasErrors.NewRequiredFieldError("root")
	}
	if cfg.Format == nil {
		return nil, marasErrors.NewRequiredFieldError("config.Format")
	}
	if cfg.KeyHash == "" {
		return nil, marasErrors.NewRequiredFieldError("config.KeyHash")
	}

	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Set{root: root, cfg: cfg, files: fdcache.New[*shardfile.ShardFile](openFd)}, nil
}

// Ref is the resolved location of a key within its shard set: the open
// shard file, the bucket's byte offset within it, and the decoded
// bucket at that slot (empty for a brand-new key).
type Ref struct {
	Shard  *shardfile.ShardFile
	Pos    int64
	Bucket bucket.Bucket
}

// Resolve finds key's shard-set directory and probes midx_1, midx_2, …
// until it finds key's existing bucket slot or the first empty one.
func (s *Set) Resolve(key string) (Ref, error) {
	dir := shardaddr.Dir(s.root, key, s.cfg.KeyDelim)
	digest, err := hasher.Digest(s.cfg.KeyHash, key)
	if err != nil {
		return Ref{}, err
	}
	idx := hasher.BucketIndex(key, s.cfg.HashLimit)

	num := 1
	for {
		sf, err := s.open(dir, num)
		if err != nil {
			return Ref{}, err
		}

		b, pos, err := sf.ReadBucket(idx)
		if err != nil {
			// A CORRUPT_BUCKET error comes with an empty bucket and has
			// already been logged by ReadBucket; only other errors are fatal.
			if ie, ok := marasErrors.AsIndexError(err); !ok || ie.Code() != marasErrors.ErrorCodeCorruptBucket {
				return Ref{}, err
			}
		}

		if b.IsEmpty() || bytes.Equal(b.Key, digest) {
			return Ref{Shard: sf, Pos: pos, Bucket: b}, nil
		}

		num++
	}
}

// open returns the cached shard file for (dir, num), moving it to the
// front of the LRU order on a hit, or opening it from disk or creating
// it fresh if absent.
func (s *Set) open(dir string, num int) (*shardfile.ShardFile, error) {
	path := shardaddr.IndexPath(dir, num)
	return s.files.GetOrOpen(path, func() (*shardfile.ShardFile, error) {
		if _, statErr := os.Stat(path); statErr == nil {
			return shardfile.Open(path, num, s.cfg.Logger)
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, marasErrors.ClassifyDirectoryCreationError(err, dir)
		}

		header := shardfile.Header{
			Hash:       s.cfg.KeyHash,
			HashLimit:  s.cfg.HashLimit,
			HeaderLen:  s.cfg.HeaderLen,
			Fmt:        s.cfg.Fmt,
			BucketSize: s.cfg.BucketSize,
			EntryMap:   s.cfg.EntryMap,
		}

		return shardfile.Create(path, num, dir, header, s.cfg.Format, s.cfg.Logger)
	})
}

// Close closes every open shard file.
func (s *Set) Close() error {
	return s.files.Close()
}
