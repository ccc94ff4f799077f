// Package engine implements the database façade from spec.md §4.7:
// create/open of the meta file, index registration, and insert/get/
// history composed from the index and value-store subsystems. It keeps
// the teacher's Engine shape — a Config-driven constructor, an
// atomic.Bool closed guard, a structured logger — and replaces the
// Bitcask-style in-memory index with the shard-set/shard-file/
// value-store stack.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/thatch45/maras-go/internal/bucket"
	"github.com/thatch45/maras-go/internal/codec"
	"github.com/thatch45/maras-go/internal/hashreg"
	"github.com/thatch45/maras-go/internal/hasher"
	"github.com/thatch45/maras-go/internal/revlog"
	"github.com/thatch45/maras-go/internal/shardset"
	"github.com/thatch45/maras-go/internal/valuestore"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"github.com/thatch45/maras-go/pkg/options"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const metaFileName = "maras_meta.db"

// Config holds the parameters needed to create or open an Engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Engine is the database façade: one meta file plus zero or more
// registered indexes, each backed by its own shard-set directory, and
// one shared value store for payload storage.
type Engine struct {
	opts   *options.Options
	log    *zap.SugaredLogger
	closed atomic.Bool

	root     string
	metaPath string
	format   *bucket.Format

	indexes map[string]*shardset.Set
	order   []string // AddIndex call order, consulted when opts.FirstIndexOnly is set.
	store   *valuestore.Store
}

// Ref is the bucket reference returned by Insert: enough to locate the
// value and the head of the key's revision chain.
type Ref struct {
	Index    string
	Dir      string
	ShardNum int
	Pos      int64
	Start    int64
	Size     int64
	Prev     int64
}

// Create initializes a brand-new database: it fails with ALREADY_EXISTS
// if the meta file is present, creates the database directory if
// absent, and writes the meta file (serialized config + delimiter,
// padded to header_len).
func Create(cfg *Config) (*Engine, error) {
	opts := cfg.Options
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	root := opts.DataDir
	metaPath := filepath.Join(root, metaFileName)

	if _, err := os.Stat(metaPath); err == nil {
		return nil, marasErrors.NewAlreadyExistsError("database").WithDetail("path", metaPath)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, marasErrors.ClassifyDirectoryCreationError(err, root)
	}

	raw, err := codec.EncodeHeader(opts, opts.HeaderLen)
	if err != nil {
		return nil, fmt.Errorf("engine: encode meta header: %w", err)
	}

	f, err := os.OpenFile(metaPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, marasErrors.ClassifyFileOpenError(err, metaPath, metaFileName)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "write meta header").WithPath(metaPath)
	}
	if opts.Sync {
		if err := f.Sync(); err != nil {
			return nil, marasErrors.ClassifySyncError(err, metaFileName, metaPath, 0)
		}
	}

	return newEngine(root, metaPath, opts, cfg.Logger)
}

// Open opens an existing database: it fails with NOT_FOUND if the meta
// file is absent, otherwise reads and parses its header.
func Open(cfg *Config) (*Engine, error) {
	root := cfg.Options.DataDir
	metaPath := filepath.Join(root, metaFileName)

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, marasErrors.NewNotFoundError("database").WithDetail("path", metaPath)
		}
		return nil, marasErrors.ClassifyFileOpenError(err, metaPath, metaFileName)
	}

	var opts options.Options
	if err := codec.DecodeHeader(raw, &opts); err != nil {
		return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeCorruptHeader, "decode meta header").
			WithPath(metaPath)
	}
	opts.DataDir = root

	return newEngine(root, metaPath, &opts, cfg.Logger)
}

func newEngine(root, metaPath string, opts *options.Options, log *zap.SugaredLogger) (*Engine, error) {
	digestWidth, err := hashreg.Size(opts.KeyHash)
	if err != nil {
		return nil, err
	}
	format, err := bucket.Parse(opts.Fmt, opts.EntryMap, digestWidth)
	if err != nil {
		return nil, marasErrors.NewInvalidConfigError("fmt", err.Error())
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Engine{
		opts:     opts,
		log:      log,
		root:     root,
		metaPath: metaPath,
		format:   format,
		indexes:  make(map[string]*shardset.Set),
		store:    valuestore.New(root, opts.OpenFd, opts.Sync, log),
	}, nil
}

// AddIndex registers a new index. It fails with ALREADY_EXISTS if name
// is already registered; otherwise it allocates a shard-set manager
// rooted at <database directory>/<name>, parameterized by the meta
// header.
func (e *Engine) AddIndex(name string) error {
	if e.closed.Load() {
		return marasErrors.NewNotFoundError("database").WithDetail("reason", "engine closed")
	}
	if _, ok := e.indexes[name]; ok {
		return marasErrors.NewAlreadyExistsError("index:" + name)
	}

	cfg := shardset.Config{
		HashLimit:  e.opts.HashLimit,
		KeyHash:    e.opts.KeyHash,
		Fmt:        e.opts.Fmt,
		EntryMap:   e.opts.EntryMap,
		HeaderLen:  e.opts.HeaderLen,
		KeyDelim:   e.opts.KeyDelim,
		Format:     e.format,
		BucketSize: e.format.Size,
		Logger:     e.log,
	}

	set, err := shardset.New(filepath.Join(e.root, name), cfg, e.opts.OpenFd)
	if err != nil {
		return fmt.Errorf("engine: add index %q: %w", name, err)
	}

	e.indexes[name] = set
	e.order = append(e.order, name)
	e.log.Infow("index registered", "name", name)
	return nil
}

// Insert writes data under key into every registered index, per
// spec.md's resolution of the source's ambiguous per-index insert loop
// (or only the first registered index, if opts.FirstIndexOnly is set).
// Within each index: resolve (bucket_ref, shard_file), append the
// payload to the value store, then append the revision entry and
// overwrite the bucket slot. It returns one Ref per index, keyed by
// index name.
func (e *Engine) Insert(key string, data []byte, id string) (map[string]Ref, error) {
	if e.closed.Load() {
		return nil, marasErrors.NewNotFoundError("database").WithDetail("reason", "engine closed")
	}
	if len(e.indexes) == 0 {
		return nil, marasErrors.NewNotFoundError("index").WithDetail("reason", "no index registered")
	}

	names := e.order
	if e.opts.FirstIndexOnly {
		names = names[:1]
	}

	refs := make(map[string]Ref, len(names))
	for _, name := range names {
		set := e.indexes[name]
		ref, err := set.Resolve(key)
		if err != nil {
			return nil, fmt.Errorf("engine: resolve key in index %q: %w", name, err)
		}

		dir := ref.Shard.Header().Dir
		shardNum := ref.Shard.Num()

		start, size, err := e.store.Insert(dir, shardNum, data, id)
		if err != nil {
			return nil, fmt.Errorf("engine: insert value in index %q: %w", name, err)
		}

		prevHead := int64(0)
		if v, ok := ref.Bucket.Fields["prev"]; ok {
			prevHead = int64(v)
		}

		entry := revlog.Entry{
			Key:  key,
			St:   start,
			Sz:   size,
			Rev:  revlog.NextRev(),
			Type: "",
			Prev: prevHead,
			ID:   id,
		}

		revOffset, err := ref.Shard.AppendRevision(entry)
		if err != nil {
			return nil, fmt.Errorf("engine: append revision in index %q: %w", name, err)
		}
		if e.opts.Sync {
			if err := ref.Shard.Sync(); err != nil {
				return nil, err
			}
		}

		digest, err := hasher.Digest(e.opts.KeyHash, key)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]uint64, len(ref.Bucket.Fields))
		for k, v := range ref.Bucket.Fields {
			fields[k] = v
		}
		fields["prev"] = uint64(revOffset)

		newBucket := bucket.Bucket{Key: digest, Fields: fields}
		if err := ref.Shard.WriteBucket(ref.Pos, newBucket); err != nil {
			return nil, fmt.Errorf("engine: write bucket in index %q: %w", name, err)
		}
		if e.opts.Sync {
			if err := ref.Shard.Sync(); err != nil {
				return nil, err
			}
		}

		refs[name] = Ref{
			Index: name, Dir: dir, ShardNum: shardNum, Pos: ref.Pos,
			Start: start, Size: size, Prev: revOffset,
		}
	}

	return refs, nil
}

// Get composes resolve-bucket → read-revision-head → value-store-get,
// the natural reconstruction spec.md specifies for the get operation the
// source never implements.
func (e *Engine) Get(indexName, key string) ([]byte, error) {
	set, ok := e.indexes[indexName]
	if !ok {
		return nil, marasErrors.NewNotFoundError("index:" + indexName)
	}

	ref, err := set.Resolve(key)
	if err != nil {
		return nil, err
	}
	if ref.Bucket.IsEmpty() {
		return nil, marasErrors.NewNotFoundError("key:" + key)
	}

	head := int64(ref.Bucket.Fields["prev"])
	entry, err := ref.Shard.ReadRevisionAt(head)
	if err != nil {
		return nil, err
	}

	return e.store.Get(ref.Shard.Header().Dir, ref.Shard.Num(), entry.St, entry.Sz)
}

// History walks key's full revision chain, most-recent-first.
func (e *Engine) History(indexName, key string) ([]revlog.Entry, error) {
	set, ok := e.indexes[indexName]
	if !ok {
		return nil, marasErrors.NewNotFoundError("index:" + indexName)
	}

	ref, err := set.Resolve(key)
	if err != nil {
		return nil, err
	}
	if ref.Bucket.IsEmpty() {
		return nil, marasErrors.NewNotFoundError("key:" + key)
	}

	head := int64(ref.Bucket.Fields["prev"])
	return revlog.Chain(head, ref.Shard.ReadRevisionAt)
}

// Close shuts down the engine, closing every index's shard set and the
// shared value store. It is safe to call exactly once; subsequent calls
// return an error.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return marasErrors.NewNotFoundError("database").WithDetail("reason", "already closed")
	}

	var errs []error
	for name, set := range e.indexes {
		if err := set.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index %q: %w", name, err))
		}
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close value store: %w", err))
	}

	return multierr.Combine(errs...)
}
