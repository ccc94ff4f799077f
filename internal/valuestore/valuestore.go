// Package valuestore implements the append-only per-shard value files
// (stor_N) that back every key's payload. It is grounded on the
// source's MPack: data_in/data_out framing plus seek-to-end append and
// positioned reads, adapted to a file-descriptor cache and structured
// errors instead of a bare dict of open handles.
package valuestore

import (
	"fmt"
	"os"

	"github.com/thatch45/maras-go/internal/codec"
	"github.com/thatch45/maras-go/internal/fdcache"
	"github.com/thatch45/maras-go/internal/shardaddr"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"go.uber.org/zap"
)

// record is the on-disk envelope for one stored value, mirroring the
// source's data_in/data_out dict of {'d': data, 'id_': id}.
type record struct {
	Data []byte `msgpack:"d"`
	ID   string `msgpack:"id_"`
}

// Store manages the stor_N files under one database root.
type Store struct {
	root string
	sync bool
	fds  *fdcache.Cache[*os.File]
	log  *zap.SugaredLogger
}

// New creates a Store rooted at root. openFd bounds the number of
// simultaneously open stor_N descriptors; sync, if true, fsyncs after
// every append. log is the structured logger scoped to this store; pass
// a no-op logger in tests that don't care about log output.
func New(root string, openFd int, sync bool, log *zap.SugaredLogger) *Store {
	return &Store{root: root, sync: sync, fds: fdcache.New[*os.File](openFd), log: log}
}

// Insert appends data under the given record id to the value file for
// (dir, shardNum), creating the directory and file if either is absent.
// It returns the byte offset and length written, the coordinates every
// bucket entry needs to read the value back.
func (s *Store) Insert(dir string, shardNum int, data []byte, id string) (start, size int64, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, 0, marasErrors.ClassifyDirectoryCreationError(err, dir)
	}

	path := shardaddr.StorePath(dir, shardNum)
	_, statErr := os.Stat(path)
	isNew := statErr != nil

	f, err := s.fds.GetOrOpen(path, func() (*os.File, error) {
		return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	})
	if err != nil {
		return 0, 0, marasErrors.ClassifyFileOpenError(err, path, shardaddr.StoreFileName(shardNum))
	}
	if isNew {
		s.log.Infow("value store file created", "path", path, "shard", shardNum)
	}

	raw, err := codec.Marshal(record{Data: data, ID: id})
	if err != nil {
		return 0, 0, fmt.Errorf("valuestore: marshal record: %w", err)
	}

	off, err := f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, 0, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "seek to end of value file").
			WithPath(path).WithFileName(shardaddr.StoreFileName(shardNum))
	}

	n, err := f.Write(raw)
	if err != nil {
		return 0, 0, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "append value record").
			WithPath(path).WithOffset(int(off))
	}
	if n != len(raw) {
		return 0, 0, marasErrors.NewStorageError(
			nil, marasErrors.ErrorCodeShortWrite, "short write appending value record",
		).WithPath(path).WithOffset(int(off)).WithDetail("wantBytes", len(raw)).WithDetail("gotBytes", n)
	}

	if s.sync {
		if err := f.Sync(); err != nil {
			return 0, 0, marasErrors.ClassifySyncError(err, shardaddr.StoreFileName(shardNum), path, int(off))
		}
	}

	return off, int64(n), nil
}

// Get reads size bytes at start from the value file for (dir, shardNum)
// and returns the original payload.
func (s *Store) Get(dir string, shardNum int, start, size int64) ([]byte, error) {
	path := shardaddr.StorePath(dir, shardNum)
	// Opened read-write: the cached handle is shared with Insert.
	f, err := s.fds.GetOrOpen(path, func() (*os.File, error) {
		return os.OpenFile(path, os.O_RDWR, 0o644)
	})
	if err != nil {
		return nil, marasErrors.ClassifyFileOpenError(err, path, shardaddr.StoreFileName(shardNum))
	}

	raw := make([]byte, size)
	n, err := f.ReadAt(raw, start)
	if err != nil && int64(n) != size {
		s.log.Warnw("short read from value file", "path", path, "offset", start, "wantBytes", size, "gotBytes", n)
		return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeCorruptStore, "short read from value file").
			WithPath(path).WithOffset(int(start)).
			WithDetail("wantBytes", size).WithDetail("gotBytes", n)
	}

	var rec record
	if err := codec.Unmarshal(raw, &rec); err != nil {
		s.log.Warnw("corrupt value record, decode failed", "path", path, "offset", start, "error", err)
		return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeCorruptStore, "decode value record").
			WithPath(path).WithOffset(int(start))
	}

	return rec.Data, nil
}

// Close closes every cached value-file descriptor.
func (s *Store) Close() error {
	return s.fds.Close()
}
