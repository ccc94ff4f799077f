// Package maras provides an embedded, single-writer key/value data
// store built on a sharded distributed hash map index and an
// append-only value store. DB is the primary entry point: create or
// open a database, register one or more named indexes, then insert,
// get, or walk the history of keys.
package maras

import (
	"github.com/thatch45/maras-go/internal/engine"
	"github.com/thatch45/maras-go/internal/hashreg"
	"github.com/thatch45/maras-go/internal/idgen"
	"github.com/thatch45/maras-go/internal/revlog"
	"github.com/thatch45/maras-go/pkg/logger"
	"github.com/thatch45/maras-go/pkg/options"
)

// DB is the public façade over the internal engine.
type DB struct {
	engine *engine.Engine
	opts   *options.Options
}

// History is one entry in a key's revision chain, most-recent-first.
type History = revlog.Entry

// Ref locates the payload an Insert call wrote, per index.
type Ref = engine.Ref

// Create initializes a brand-new database under the configuration
// produced by applying opts over the package defaults. service names
// the structured logger scope.
func Create(service string, opts ...options.OptionFunc) (*DB, error) {
	cfg := buildOptions(opts)
	eng, err := engine.Create(&engine.Config{Options: cfg, Logger: logger.New(service)})
	if err != nil {
		return nil, err
	}
	return &DB{engine: eng, opts: cfg}, nil
}

// Open opens an existing database under the configuration produced by
// applying opts over the package defaults; only DataDir need be
// accurate, since every other field is read back from the meta file.
func Open(service string, opts ...options.OptionFunc) (*DB, error) {
	cfg := buildOptions(opts)
	eng, err := engine.Open(&engine.Config{Options: cfg, Logger: logger.New(service)})
	if err != nil {
		return nil, err
	}
	return &DB{engine: eng, opts: cfg}, nil
}

func buildOptions(opts []options.OptionFunc) *options.Options {
	cfg := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// AddIndex registers a new named index against the database.
func (db *DB) AddIndex(name string) error {
	return db.engine.AddIndex(name)
}

// Insert writes data under key into every registered index. If id is
// empty, a random record id is generated with the configured key
// digest's byte width. It returns one Ref per index, keyed by index
// name.
func (db *DB) Insert(key string, data []byte, id string) (map[string]Ref, error) {
	if id == "" {
		width, err := hashreg.Size(db.opts.KeyHash)
		if err != nil {
			return nil, err
		}
		id = idgen.HexID(width)
	}
	return db.engine.Insert(key, data, id)
}

// Get retrieves the most recent value stored for key in the named
// index.
func (db *DB) Get(indexName, key string) ([]byte, error) {
	return db.engine.Get(indexName, key)
}

// History returns key's full revision chain in the named index,
// most-recent-first.
func (db *DB) History(indexName, key string) ([]History, error) {
	return db.engine.History(indexName, key)
}

// Close releases every resource the database holds open.
func (db *DB) Close() error {
	return db.engine.Close()
}
