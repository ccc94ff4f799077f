// Package codec implements msgpack serialization and the two framing
// conventions built on it: a delimited header region (meta files and
// shard files alike) and a length-prefixed record (revision entries in a
// shard file's tail region). Value-file records are bare Marshal output
// with neither framing. Both framings are grounded on the source's use of msgpack
// plus a literal '_||_||_' delimiter and a big-endian uint16 length
// prefix.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// HeaderDelim marks the end of a msgpack-encoded header region. It is
// written verbatim after the header bytes and searched for on read.
const HeaderDelim = "_||_||_"

// Marshal serializes v with msgpack. Used for header payloads and
// revision entries alike.
func Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal deserializes msgpack-encoded data into v.
func Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// EncodeHeader serializes header with msgpack, appends HeaderDelim, and
// pads the result with zero bytes up to headerLen. It returns an error
// if the encoded header plus delimiter does not fit within headerLen.
func EncodeHeader(header any, headerLen int) ([]byte, error) {
	payload, err := Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal header: %w", err)
	}

	framed := append(payload, []byte(HeaderDelim)...)
	if len(framed) > headerLen {
		return nil, fmt.Errorf(
			"codec: encoded header (%d bytes) exceeds header_len (%d)",
			len(framed), headerLen,
		)
	}

	out := make([]byte, headerLen)
	copy(out, framed)
	return out, nil
}

// DecodeHeader locates HeaderDelim within raw and unmarshals everything
// before it into v. raw is normally the first headerLen bytes of a meta
// or shard file. It returns an error if the delimiter is not present.
func DecodeHeader(raw []byte, v any) error {
	idx := bytes.Index(raw, []byte(HeaderDelim))
	if idx < 0 {
		return fmt.Errorf("codec: header delimiter not found within %d bytes", len(raw))
	}
	return Unmarshal(raw[:idx], v)
}

// EncodeRecord serializes v with msgpack and prefixes it with its
// length as a big-endian uint16, matching the source's
// struct.pack('>H', len(packed)) framing for revision entries.
func EncodeRecord(v any) ([]byte, error) {
	payload, err := Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal record: %w", err)
	}
	if len(payload) > 0xffff {
		return nil, fmt.Errorf("codec: record of %d bytes exceeds uint16 length prefix", len(payload))
	}

	out := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(out, uint16(len(payload)))
	copy(out[2:], payload)
	return out, nil
}

// ReadRecord reads one length-prefixed record from r and unmarshals it
// into v, returning the total number of bytes consumed (prefix + payload).
func ReadRecord(r io.Reader, v any) (int, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, fmt.Errorf("codec: read record length prefix: %w", err)
	}

	size := int(binary.BigEndian.Uint16(lenBuf[:]))
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, fmt.Errorf("codec: read record payload (%d bytes): %w", size, err)
	}

	if err := Unmarshal(payload, v); err != nil {
		return 0, fmt.Errorf("codec: unmarshal record: %w", err)
	}

	return 2 + size, nil
}
