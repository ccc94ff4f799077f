package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageErrorChainingPreservesType(t *testing.T) {
	err := NewStorageError(nil, ErrorCodeCorruptStore, "short read").
		WithPath("/tmp/stor_1").
		WithOffset(10).
		WithDetail("wantBytes", 20).
		WithDetail("gotBytes", 5)

	se, ok := AsStorageError(err)
	require.True(t, ok, "expected *StorageError to survive WithDetail chaining")
	require.Equal(t, "/tmp/stor_1", se.Path())
	require.Equal(t, 10, se.Offset())
	require.Equal(t, 20, se.Details()["wantBytes"])
	require.Equal(t, ErrorCodeCorruptStore, se.Code())
}

func TestIndexErrorChainingPreservesType(t *testing.T) {
	err := NewCorruptBucketError(2, 4096, nil).WithKey("/a/b")
	ie, ok := AsIndexError(err)
	require.True(t, ok)
	require.Equal(t, "/a/b", ie.Key())
	require.Equal(t, 2, ie.ShardNum())
	require.Equal(t, ErrorCodeCorruptBucket, ie.Code())
}

func TestEngineErrorChainingPreservesType(t *testing.T) {
	err := NewAlreadyExistsError("index:default").WithDetail("path", "/db")
	ee, ok := AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, "index:default", ee.Resource())
	require.Equal(t, ErrorCodeAlreadyExists, ee.Code())
	require.Equal(t, "/db", ee.Details()["path"])
}

func TestGetErrorCodeFallsBackToInternal(t *testing.T) {
	require.Equal(t, ErrorCodeInternal, GetErrorCode(stdErrors.New("plain error")))
}
