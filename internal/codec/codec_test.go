package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHeader struct {
	Hash string `msgpack:"hash"`
	Num  int    `msgpack:"num"`
}

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	h := fakeHeader{Hash: "sha1", Num: 3}

	raw, err := EncodeHeader(h, 128)
	require.NoError(t, err)
	require.Len(t, raw, 128)
	require.True(t, bytes.Contains(raw, []byte(HeaderDelim)))

	var got fakeHeader
	require.NoError(t, DecodeHeader(raw, &got))
	require.Equal(t, h, got)
}

func TestEncodeHeaderRejectsTooSmallBudget(t *testing.T) {
	h := fakeHeader{Hash: strings.Repeat("x", 100)}
	_, err := EncodeHeader(h, 8)
	require.Error(t, err)
}

func TestDecodeHeaderRequiresDelimiter(t *testing.T) {
	var got fakeHeader
	err := DecodeHeader([]byte("no delimiter here"), &got)
	require.Error(t, err)
}

func TestEncodeReadRecordRoundTrip(t *testing.T) {
	type rec struct {
		Key string `msgpack:"key"`
		N   int64  `msgpack:"n"`
	}
	want := rec{Key: "/a/b", N: 42}

	raw, err := EncodeRecord(want)
	require.NoError(t, err)

	var got rec
	n, err := ReadRecord(bytes.NewReader(raw), &got)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, want, got)
}

func TestReadRecordShortPayloadFails(t *testing.T) {
	raw, err := EncodeRecord(map[string]string{"key": "x"})
	require.NoError(t, err)

	truncated := raw[:len(raw)-2]
	var got map[string]string
	_, err = ReadRecord(bytes.NewReader(truncated), &got)
	require.Error(t, err)
}

func TestReadRecordRequiresLengthPrefix(t *testing.T) {
	var got map[string]string
	_, err := ReadRecord(bytes.NewReader([]byte{0x00}), &got)
	require.Error(t, err)
}
