package bucket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultFormat(t *testing.T) {
	format, err := Parse(">KsQ", []string{"key", "prev"}, 20)
	require.NoError(t, err)
	require.Len(t, format.Fields, 2)
	require.Equal(t, KindDigest, format.Fields[0].Kind)
	require.Equal(t, 20, format.Fields[0].Size)
	require.Equal(t, KindUint64, format.Fields[1].Kind)
	require.Equal(t, 8, format.Fields[1].Size)
	require.Equal(t, 28, format.Size)
}

func TestParseRejectsFieldCountMismatch(t *testing.T) {
	_, err := Parse(">KsQ", []string{"key"}, 20)
	require.Error(t, err)
}

func TestParseRejectsUnknownToken(t *testing.T) {
	_, err := Parse(">KsZ", []string{"key", "z"}, 20)
	require.Error(t, err)
}

func TestParseRejectsBareK(t *testing.T) {
	_, err := Parse(">KQ", []string{"key", "prev"}, 20)
	require.Error(t, err)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	format, err := Parse(">KsQHB", []string{"key", "prev", "tag", "flags"}, 20)
	require.NoError(t, err)

	digest := make([]byte, 20)
	for i := range digest {
		digest[i] = byte(i + 1)
	}
	values := map[string]uint64{"prev": 0x1122334455667788, "tag": 0xbeef, "flags": 7}

	raw, err := Pack(format, digest, values)
	require.NoError(t, err)
	require.Len(t, raw, format.Size)

	got, err := Unpack(format, raw)
	require.NoError(t, err)

	if diff := cmp.Diff(digest, got.Key); diff != "" {
		t.Fatalf("digest mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, values, got.Fields)
}

func TestEmptyBucketIsEmpty(t *testing.T) {
	format, err := Parse(">KsQ", []string{"key", "prev"}, 20)
	require.NoError(t, err)

	b := Empty(format)
	require.True(t, b.IsEmpty())
	require.Len(t, b.Key, 20)
	require.Equal(t, uint64(0), b.Fields["prev"])
}

func TestNonZeroDigestIsNotEmpty(t *testing.T) {
	b := Bucket{Key: []byte{0, 0, 1}}
	require.False(t, b.IsEmpty())
}

func TestUnpackRejectsShortRecord(t *testing.T) {
	format, err := Parse(">KsQ", []string{"key", "prev"}, 20)
	require.NoError(t, err)

	_, err = Unpack(format, make([]byte, format.Size-1))
	require.Error(t, err)
}

func TestPackRejectsOversizedDigest(t *testing.T) {
	format, err := Parse(">KsQ", []string{"key", "prev"}, 4)
	require.NoError(t, err)

	_, err = Pack(format, make([]byte, 5), nil)
	require.Error(t, err)
}
