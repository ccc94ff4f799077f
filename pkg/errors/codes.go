package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: shard file reads/writes, value file appends, directory
	// creation.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Engine-level error codes, named directly after spec.md §7.
const (
	// ErrorCodeAlreadyExists is returned when create is called over an
	// existing meta file or when an index name is registered twice.
	ErrorCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrorCodeNotFound is returned when open targets an absent database
	// or an unregistered index is looked up.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeInvalidConfig is returned at create time when hash_limit is
	// not of the form 2^n-1, the hash name is unknown, or entry_map is empty.
	ErrorCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes of the shard file and value file formats.
const (
	// ErrorCodeCorruptHeader indicates the header delimiter was not found
	// within header_len bytes of a shard or meta file.
	ErrorCodeCorruptHeader ErrorCode = "CORRUPT_HEADER"

	// ErrorCodeCorruptBucket indicates a fixed-width bucket record failed to
	// unpack (length mismatch or partial read). Treated as empty on read,
	// surfaced as a warning.
	ErrorCodeCorruptBucket ErrorCode = "CORRUPT_BUCKET"

	// ErrorCodeCorruptStore indicates a short read from a value file: fewer
	// bytes were available than (start, size) promised.
	ErrorCodeCorruptStore ErrorCode = "CORRUPT_STORE"

	// ErrorCodeShortWrite indicates a partial write of a revision entry or
	// bucket record. The caller must consider the insert failed.
	ErrorCodeShortWrite ErrorCode = "SHORT_WRITE"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// a shard or value file. Distinct from generic IO errors because it has
	// a specific resolution path: adjust permissions or run elevated.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)
