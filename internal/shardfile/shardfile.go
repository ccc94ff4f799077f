// Package shardfile implements the midx_N shard file protocol: a header
// region, a fixed bucket array, and a variable tail region of
// length-prefixed revision entries. It is grounded on the source's
// DHM.create_h_index/open_map/_get_h_entry/insert, generalized to the
// configurable bucket format in internal/bucket and adapted to explicit
// *os.File positioned I/O instead of a single stateful cursor.
package shardfile

import (
	"fmt"
	"io"
	"os"

	"github.com/thatch45/maras-go/internal/bucket"
	"github.com/thatch45/maras-go/internal/codec"
	"github.com/thatch45/maras-go/internal/revlog"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"go.uber.org/zap"
)

// ShardFile wraps one open midx_N file plus its parsed header and
// bucket format.
type ShardFile struct {
	path   string
	num    int
	file   *os.File
	header Header
	format *bucket.Format
	log    *zap.SugaredLogger
}

// arraySize returns the total byte length of the fixed bucket array:
// (hash_limit+1) buckets of bucket_size bytes each.
func (h Header) arraySize() int64 {
	return int64(h.HashLimit+1) * int64(h.BucketSize)
}

// Create initializes a brand-new shard file at path: it writes the
// header region (serialized header + delimiter, padded to header_len)
// followed by a zeroed bucket array of (hash_limit+1) buckets. The
// parent directory must already exist.
func Create(path string, num int, dir string, header Header, format *bucket.Format, log *zap.SugaredLogger) (*ShardFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, marasErrors.ClassifyFileOpenError(err, path, fmt.Sprintf("midx_%d", num))
	}

	header.Dir = dir
	header.Num = num

	raw, err := codec.EncodeHeader(header, header.HeaderLen)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shardfile: encode header: %w", err)
	}

	if _, err := f.Write(raw); err != nil {
		f.Close()
		return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "write shard header").
			WithPath(path).WithShardNum(num)
	}

	empty := bucket.Empty(format)
	row, err := bucket.Pack(format, empty.Key, empty.Fields)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shardfile: pack empty bucket: %w", err)
	}

	for i := uint64(0); i <= header.HashLimit; i++ {
		if _, err := f.Write(row); err != nil {
			f.Close()
			return nil, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "initialize bucket array").
				WithPath(path).WithShardNum(num)
		}
	}

	log.Infow("shard file created", "path", path, "shard", num, "buckets", header.HashLimit+1)
	return &ShardFile{path: path, num: num, file: f, header: header, format: format, log: log}, nil
}

// Open opens an existing shard file at path and parses its header.
func Open(path string, num int, log *zap.SugaredLogger) (*ShardFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, marasErrors.ClassifyFileOpenError(err, path, fmt.Sprintf("midx_%d", num))
	}

	var header Header
	raw := make([]byte, 0, 4096)
	buf := make([]byte, 1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			raw = append(raw, buf[:n]...)
		}
		if decErr := codec.DecodeHeader(raw, &header); decErr == nil {
			break
		}
		if err != nil {
			f.Close()
			return nil, marasErrors.NewStorageError(
				err, marasErrors.ErrorCodeCorruptHeader, "header delimiter not found in shard file",
			).WithPath(path).WithShardNum(num)
		}
	}

	format, err := bucket.Parse(header.Fmt, header.EntryMap, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shardfile: parse header format: %w", err)
	}
	// The digest width is implicit in bucket_size recorded at create
	// time; recompute it from bucket_size minus the other fields' sizes.
	format, err = bucket.Parse(header.Fmt, header.EntryMap, digestWidthFromBucketSize(format, header.BucketSize))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shardfile: re-parse header format: %w", err)
	}

	log.Infow("shard file opened", "path", path, "shard", num)
	return &ShardFile{path: path, num: num, file: f, header: header, format: format, log: log}, nil
}

// digestWidthFromBucketSize infers the digest field width by
// subtracting every non-digest field's fixed size from the recorded
// total bucket_size.
func digestWidthFromBucketSize(format *bucket.Format, bucketSize int) int {
	fixed := 0
	for _, f := range format.Fields {
		if f.Kind != bucket.KindDigest {
			fixed += f.Size
		}
	}
	width := bucketSize - fixed
	if width < 0 {
		width = 0
	}
	return width
}

// Num returns the shard's 1-based file number.
func (s *ShardFile) Num() int { return s.num }

// Header returns the shard's parsed header.
func (s *ShardFile) Header() Header { return s.header }

// slotOffset returns the absolute file offset of bucket index idx.
func (s *ShardFile) slotOffset(idx uint64) int64 {
	return int64(s.header.HeaderLen) + int64(idx)*int64(s.header.BucketSize)
}

// ReadBucket reads the bucket at index idx. Every read explicitly seeks
// to the slot first — a deliberate deviation from the source, which
// relies on the file cursor already being positioned there from the
// preceding header read and never seeks before a bucket read.
func (s *ShardFile) ReadBucket(idx uint64) (bucket.Bucket, int64, error) {
	pos := s.slotOffset(idx)
	if _, err := s.file.Seek(pos, io.SeekStart); err != nil {
		return bucket.Bucket{}, pos, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "seek to bucket slot").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(pos))
	}

	raw := make([]byte, s.header.BucketSize)
	n, err := io.ReadFull(s.file, raw)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.log.Warnw("short bucket read, treating as empty",
				"path", s.path, "shard", s.num, "offset", pos, "error", err)
			return bucket.Empty(s.format), pos, nil
		}
		return bucket.Bucket{}, pos, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "read bucket slot").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(pos))
	}
	_ = n

	b, err := bucket.Unpack(s.format, raw)
	if err != nil {
		s.log.Warnw("corrupt bucket record, treating as empty",
			"path", s.path, "shard", s.num, "offset", pos, "error", err)
		return bucket.Empty(s.format), pos, marasErrors.NewCorruptBucketError(s.num, pos, err)
	}
	return b, pos, nil
}

// WriteBucket overwrites the bucket slot at pos (as returned by
// ReadBucket) with b.
func (s *ShardFile) WriteBucket(pos int64, b bucket.Bucket) error {
	raw, err := bucket.Pack(s.format, b.Key, b.Fields)
	if err != nil {
		return fmt.Errorf("shardfile: pack bucket: %w", err)
	}

	if _, err := s.file.Seek(pos, io.SeekStart); err != nil {
		return marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "seek to bucket slot").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(pos))
	}

	n, err := s.file.Write(raw)
	if err != nil {
		return marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "write bucket slot").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(pos))
	}
	if n != len(raw) {
		return marasErrors.NewShortWriteError("WriteBucket", len(raw), n)
	}
	return nil
}

// AppendRevision writes entry to the tail region (end of file) and
// returns the offset it was written at — the value the bucket's prev
// field must be updated to.
func (s *ShardFile) AppendRevision(entry revlog.Entry) (int64, error) {
	raw, err := revlog.Encode(entry)
	if err != nil {
		return 0, err
	}

	off, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "seek to tail region").
			WithPath(s.path).WithShardNum(s.num)
	}

	n, err := s.file.Write(raw)
	if err != nil {
		return 0, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "append revision entry").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(off))
	}
	if n != len(raw) {
		return 0, marasErrors.NewShortWriteError("AppendRevision", len(raw), n)
	}

	return off, nil
}

// ReadRevisionAt reads one revision entry at the given tail-region
// offset.
func (s *ShardFile) ReadRevisionAt(offset int64) (revlog.Entry, error) {
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return revlog.Entry{}, marasErrors.NewStorageError(err, marasErrors.ErrorCodeIO, "seek to revision entry").
			WithPath(s.path).WithShardNum(s.num).WithOffset(int(offset))
	}
	entry, _, err := revlog.ReadAt(s.file)
	return entry, err
}

// Sync fsyncs the underlying file.
func (s *ShardFile) Sync() error {
	if err := s.file.Sync(); err != nil {
		return marasErrors.ClassifySyncError(err, fmt.Sprintf("midx_%d", s.num), s.path, 0)
	}
	return nil
}

// Close closes the underlying file.
func (s *ShardFile) Close() error {
	return s.file.Close()
}

// ArraySize returns the total byte length of the shard's fixed bucket
// array.
func (s *ShardFile) ArraySize() int64 {
	return s.header.arraySize()
}
