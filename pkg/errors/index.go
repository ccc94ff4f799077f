package errors

// IndexError provides specialized error handling for hash-map index
// operations: bucket addressing, revision-chain walks, and collision
// resolution across a shard set.
type IndexError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which key was being processed when the error occurred.
	key string

	// Identifies which shard file (midx_N) was involved, if applicable.
	shardNum int

	// Describes what index operation was being performed when the
	// error occurred (e.g. "Insert", "HashMapRef", "History").
	operation string
}

// NewIndexError creates a new index-specific error with the provided context.
func NewIndexError(err error, code ErrorCode, msg string) *IndexError {
	return &IndexError{
		baseError: NewBaseError(err, code, msg),
	}
}

// Override base error methods to return *IndexError instead of *baseError.

// WithMessage updates the error message while maintaining the IndexError type.
func (ie *IndexError) WithMessage(msg string) *IndexError {
	ie.baseError.WithMessage(msg)
	return ie
}

// WithCode sets the error code while preserving the IndexError type.
func (ie *IndexError) WithCode(code ErrorCode) *IndexError {
	ie.baseError.WithCode(code)
	return ie
}

// WithDetail adds contextual information while maintaining the IndexError type.
func (ie *IndexError) WithDetail(key string, value any) *IndexError {
	ie.baseError.WithDetail(key, value)
	return ie
}

// WithKey records which key was being processed when the error occurred.
func (ie *IndexError) WithKey(key string) *IndexError {
	ie.key = key
	return ie
}

// WithShardNum captures which shard file was involved in the error.
func (ie *IndexError) WithShardNum(num int) *IndexError {
	ie.shardNum = num
	return ie
}

// WithOperation records what index operation was being performed.
func (ie *IndexError) WithOperation(operation string) *IndexError {
	ie.operation = operation
	return ie
}

// Key returns the key that was being processed when the error occurred.
func (ie *IndexError) Key() string {
	return ie.key
}

// ShardNum returns the shard file number associated with the error.
func (ie *IndexError) ShardNum() int {
	return ie.shardNum
}

// Operation returns the name of the operation that was being performed.
func (ie *IndexError) Operation() string {
	return ie.operation
}

// NewCorruptBucketError creates the error surfaced when a fixed-width bucket
// record fails to unpack. Per spec.md §4.2/§7 this is logged as a warning
// and the slot is treated as empty by the caller — it is not fatal.
func NewCorruptBucketError(shardNum int, pos int64, cause error) *IndexError {
	return NewIndexError(cause, ErrorCodeCorruptBucket, "corrupt bucket record, treating as empty").
		WithShardNum(shardNum).
		WithOperation("DecodeBucket").
		WithDetail("bucketOffset", pos)
}

// NewShortWriteError creates the error surfaced when a revision entry or
// bucket write emits fewer bytes than requested.
func NewShortWriteError(operation string, want, got int) *IndexError {
	return NewIndexError(nil, ErrorCodeShortWrite, "short write during index update").
		WithOperation(operation).
		WithDetail("wantBytes", want).
		WithDetail("gotBytes", got)
}
