package hashreg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKnownHashes(t *testing.T) {
	for name, wantSize := range map[string]int{"sha1": 20, "sha256": 32} {
		d, err := Lookup(name)
		require.NoError(t, err)
		require.Equal(t, wantSize, d.Size)

		size, err := Size(name)
		require.NoError(t, err)
		require.Equal(t, wantSize, size)
	}
}

func TestLookupUnknownHash(t *testing.T) {
	_, err := Lookup("md5")
	require.Error(t, err)

	_, err = Size("md5")
	require.Error(t, err)
}

func TestDigestMatchesHashSize(t *testing.T) {
	d := Digest("sha1", []byte("hello"))
	require.Len(t, d, sha1Size())
}

func TestDigestPanicsOnUnknownHash(t *testing.T) {
	require.Panics(t, func() {
		Digest("md5", []byte("hello"))
	})
}

func sha1Size() int {
	d, _ := Lookup("sha1")
	return d.Size
}
