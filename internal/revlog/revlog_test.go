package revlog

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEncodeReadAtRoundTrip(t *testing.T) {
	want := Entry{Key: "/a/b", St: 10, Sz: 20, Rev: 5, Type: "doc", Prev: 0, ID: "abc123"}

	raw, err := Encode(want)
	require.NoError(t, err)

	got, n, err := ReadAt(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, len(raw), n)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestNextRevIsMonotonic(t *testing.T) {
	a := NextRev()
	b := NextRev()
	c := NextRev()
	require.Less(t, a, b)
	require.Less(t, b, c)
}

func TestChainWalksBackToRoot(t *testing.T) {
	store := map[int64]Entry{
		30: {Key: "/a/b", Rev: 3, Prev: 20, ID: "v3"},
		20: {Key: "/a/b", Rev: 2, Prev: 10, ID: "v2"},
		10: {Key: "/a/b", Rev: 1, Prev: 0, ID: "v1"},
	}
	read := func(offset int64) (Entry, error) { return store[offset], nil }

	chain, err := Chain(30, read)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, "v3", chain[0].ID)
	require.Equal(t, "v2", chain[1].ID)
	require.Equal(t, "v1", chain[2].ID)
}

func TestChainOfEmptyHeadIsEmpty(t *testing.T) {
	chain, err := Chain(0, func(int64) (Entry, error) { return Entry{}, nil })
	require.NoError(t, err)
	require.Empty(t, chain)
}
