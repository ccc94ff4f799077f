package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"github.com/thatch45/maras-go/pkg/options"
)

func newTestOptions(dir string, optFns ...options.OptionFunc) *options.Options {
	cfg := options.NewDefaultOptions()
	cfg.DataDir = dir
	cfg.HashLimit = 0xff
	cfg.Sync = false // keep tests fast; durability path is exercised separately.
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &cfg
}

func TestCreateFailsIfMetaAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	_, err = Create(&Config{Options: newTestOptions(dir)})
	require.Error(t, err)
	ee, ok := marasErrors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, marasErrors.ErrorCodeAlreadyExists, ee.Code())
}

func TestOpenFailsIfMetaAbsent(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(&Config{Options: newTestOptions(dir)})
	require.Error(t, err)
	ee, ok := marasErrors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, marasErrors.ErrorCodeNotFound, ee.Code())
}

func TestAddIndexRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.AddIndex("default"))
	err = e.AddIndex("default")
	require.Error(t, err)
	ee, ok := marasErrors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, marasErrors.ErrorCodeAlreadyExists, ee.Code())
}

// TestInsertGetRoundTrip covers spec.md scenario S1: insert under a
// nested key, then read back via the bucket head.
func TestInsertGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("default"))

	refs, err := e.Insert("/a/b", []byte(`{"x":1}`), "id-1")
	require.NoError(t, err)
	ref := refs["default"]
	require.Equal(t, filepath.Join(dir, "default", "a"), ref.Dir)
	require.Equal(t, 1, ref.ShardNum)
	require.NotZero(t, ref.Prev)

	got, err := e.Get("default", "/a/b")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"x":1}`), got)
}

// TestHistoryChainOrdering covers spec.md scenario S2: two inserts under
// the same key must produce a two-entry chain, most-recent-first.
func TestHistoryChainOrdering(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("default"))

	_, err = e.Insert("/a/b", []byte(`{"v":1}`), "id-1")
	require.NoError(t, err)
	_, err = e.Insert("/a/b", []byte(`{"v":2}`), "id-2")
	require.NoError(t, err)

	got, err := e.Get("default", "/a/b")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"v":2}`), got)

	history, err := e.History("default", "/a/b")
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "id-2", history[0].ID)
	require.Equal(t, "id-1", history[1].ID)
}

// TestCollidingKeysBothRetrievable covers spec.md scenario S3 at the
// engine level: with hash_limit forced to 0, distinct keys under the same
// directory must land on distinct shards yet both remain retrievable.
func TestCollidingKeysBothRetrievable(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir, options.WithHashLimit(0))})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("default"))

	refs1, err := e.Insert("/a/x", []byte("one"), "id-x")
	require.NoError(t, err)
	refs2, err := e.Insert("/a/y", []byte("two"), "id-y")
	require.NoError(t, err)

	require.Equal(t, 1, refs1["default"].ShardNum)
	require.Equal(t, 2, refs2["default"].ShardNum)

	got1, err := e.Get("default", "/a/x")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), got1)

	got2, err := e.Get("default", "/a/y")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got2)
}

func TestInsertWritesToEveryRegisteredIndex(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("first"))
	require.NoError(t, e.AddIndex("second"))

	refs, err := e.Insert("/a/b", []byte("payload"), "id-1")
	require.NoError(t, err)
	require.Len(t, refs, 2)

	for _, name := range []string{"first", "second"} {
		got, err := e.Get(name, "/a/b")
		require.NoError(t, err)
		require.Equal(t, []byte("payload"), got)
	}
}

func TestInsertFirstIndexOnlyWritesOnlyFirst(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir, options.WithFirstIndexOnly())})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("first"))
	require.NoError(t, e.AddIndex("second"))

	refs, err := e.Insert("/a/b", []byte("payload"), "id-1")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	_, ok := refs["first"]
	require.True(t, ok)

	_, err = e.Get("second", "/a/b")
	require.Error(t, err)
}

func TestGetUnknownKeyIsNotFound(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()
	require.NoError(t, e.AddIndex("default"))

	_, err = e.Get("default", "/no/such/key")
	require.Error(t, err)
}

func TestInsertWithNoIndexesFails(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	defer e.Close()

	_, err = e.Insert("/a/b", []byte("x"), "id-1")
	require.Error(t, err)
}

func TestCloseIsOnlyValidOnce(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir)})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.Error(t, e.Close())
}

// TestReopenPreservesConfig covers spec.md scenario S4: reopening after a
// clean close must reproduce the header fields serialized at create.
func TestReopenPreservesConfig(t *testing.T) {
	dir := t.TempDir()
	e, err := Create(&Config{Options: newTestOptions(dir, options.WithKeyHash("sha256"))})
	require.NoError(t, err)
	require.NoError(t, e.AddIndex("default"))
	_, err = e.Insert("/a/b", []byte("payload"), "id-1")
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := Open(&Config{Options: &options.Options{DataDir: dir}})
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, "sha256", reopened.opts.KeyHash)

	require.NoError(t, reopened.AddIndex("default"))
	got, err := reopened.Get("default", "/a/b")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}
