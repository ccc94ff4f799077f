package bucket

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Bucket is one parsed bucket-array slot: the key digest (empty/all-zero
// for an unused slot) plus every other named field the format
// describes, keyed by its entry_map name.
type Bucket struct {
	Key    []byte
	Fields map[string]uint64
}

// IsEmpty reports whether b's digest field is all zero bytes, the
// convention an unused slot is initialized to and the signal the source
// uses to recognize a brand-new key.
func (b Bucket) IsEmpty() bool {
	if len(b.Key) == 0 {
		return true
	}
	for _, c := range b.Key {
		if c != 0 {
			return false
		}
	}
	return true
}

// Pack encodes a Bucket into a fixed-size byte slice per format. values
// supplies every non-digest field by name; digest is the field bound to
// KindDigest. Pack zero-pads a short or absent digest to the format's
// configured width, and errors if a supplied digest is too long.
func Pack(format *Format, digest []byte, values map[string]uint64) ([]byte, error) {
	out := make([]byte, 0, format.Size)
	for _, field := range format.Fields {
		switch field.Kind {
		case KindDigest:
			if len(digest) > field.Size {
				return nil, fmt.Errorf("bucket: digest of %d bytes exceeds field width %d", len(digest), field.Size)
			}
			buf := make([]byte, field.Size)
			copy(buf, digest)
			out = append(out, buf...)
		case KindUint64:
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], values[field.Name])
			out = append(out, buf[:]...)
		case KindUint32:
			var buf [4]byte
			binary.BigEndian.PutUint32(buf[:], uint32(values[field.Name]))
			out = append(out, buf[:]...)
		case KindUint16:
			var buf [2]byte
			binary.BigEndian.PutUint16(buf[:], uint16(values[field.Name]))
			out = append(out, buf[:]...)
		case KindUint8:
			out = append(out, byte(values[field.Name]))
		default:
			return nil, fmt.Errorf("bucket: unknown field kind %v", field.Kind)
		}
	}
	return out, nil
}

// Unpack decodes raw into a Bucket per format. It returns an error if
// raw is shorter than format.Size; callers treat that error as a
// corrupt bucket record and fall back to an empty slot (see
// errors.NewCorruptBucketError), never as a fatal condition.
func Unpack(format *Format, raw []byte) (Bucket, error) {
	if len(raw) < format.Size {
		return Bucket{}, fmt.Errorf("bucket: record is %d bytes, need %d", len(raw), format.Size)
	}

	b := Bucket{Fields: make(map[string]uint64, len(format.Fields))}
	pos := 0
	for _, field := range format.Fields {
		chunk := raw[pos : pos+field.Size]
		pos += field.Size
		switch field.Kind {
		case KindDigest:
			b.Key = bytes.Clone(chunk)
		case KindUint64:
			b.Fields[field.Name] = binary.BigEndian.Uint64(chunk)
		case KindUint32:
			b.Fields[field.Name] = uint64(binary.BigEndian.Uint32(chunk))
		case KindUint16:
			b.Fields[field.Name] = uint64(binary.BigEndian.Uint16(chunk))
		case KindUint8:
			b.Fields[field.Name] = uint64(chunk[0])
		default:
			return Bucket{}, fmt.Errorf("bucket: unknown field kind %v", field.Kind)
		}
	}
	return b, nil
}

// Empty returns the zero-value bucket for format: an all-zero digest and
// every other field at zero. Used both to size a fresh bucket array and
// as the fallback value for a corrupt or never-written slot.
func Empty(format *Format) Bucket {
	digestWidth := 0
	for _, f := range format.Fields {
		if f.Kind == KindDigest {
			digestWidth = f.Size
		}
	}
	fields := make(map[string]uint64, len(format.Fields))
	for _, f := range format.Fields {
		if f.Kind != KindDigest {
			fields[f.Name] = 0
		}
	}
	return Bucket{Key: make([]byte, digestWidth), Fields: fields}
}
