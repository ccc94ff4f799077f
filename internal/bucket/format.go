// Package bucket implements the fixed-width bucket record format used by
// every shard file's bucket array: a parser for the Python-struct-style
// format descriptor (e.g. ">KsQ") and the pack/unpack routines that turn
// a descriptor plus a set of named field values into bytes and back.
package bucket

import (
	"fmt"
)

// FieldKind identifies how a parsed format token is encoded.
type FieldKind int

const (
	// KindDigest is the "Ks" pairing: a fixed-length byte string sized
	// by the configured key digest width. Always the field backing the
	// key-digest slot used for exact-match comparison.
	KindDigest FieldKind = iota
	// KindUint64 is a big-endian 8-byte unsigned integer ('Q').
	KindUint64
	// KindUint32 is a big-endian 4-byte unsigned integer ('L').
	KindUint32
	// KindUint16 is a big-endian 2-byte unsigned integer ('H').
	KindUint16
	// KindUint8 is a single unsigned byte ('B').
	KindUint8
)

// Field describes one parsed format token bound to its entry_map name.
type Field struct {
	Name string
	Kind FieldKind
	Size int
}

// Format is a fully parsed bucket descriptor: the ordered field list and
// the bucket's total fixed byte size.
type Format struct {
	Fields []Field
	Size   int
}

// Parse compiles fmtStr (e.g. ">KsQ") against entryMap (e.g.
// ["key", "prev"]) and digestWidth (the configured key hash's digest
// byte width) into a Format.
//
// The leading '>' byte-order marker, if present, is consumed and
// ignored; every multi-byte field is big-endian regardless. The token
// 'K' must be immediately followed by 's': together they describe one
// fixed-length byte-string field sized by digestWidth. Any other letter
// in {Q, L, H, B} is a separate fixed-width integer field. The number of
// parsed fields must equal len(entryMap).
func Parse(fmtStr string, entryMap []string, digestWidth int) (*Format, error) {
	runes := []rune(fmtStr)
	i := 0
	if i < len(runes) && (runes[i] == '>' || runes[i] == '<' || runes[i] == '=') {
		i++
	}

	var fields []Field
	for i < len(runes) {
		switch runes[i] {
		case 'K':
			if i+1 >= len(runes) || runes[i+1] != 's' {
				return nil, fmt.Errorf("bucket: format %q: 'K' must be followed by 's'", fmtStr)
			}
			fields = append(fields, Field{Kind: KindDigest, Size: digestWidth})
			i += 2
		case 'Q':
			fields = append(fields, Field{Kind: KindUint64, Size: 8})
			i++
		case 'L':
			fields = append(fields, Field{Kind: KindUint32, Size: 4})
			i++
		case 'H':
			fields = append(fields, Field{Kind: KindUint16, Size: 2})
			i++
		case 'B':
			fields = append(fields, Field{Kind: KindUint8, Size: 1})
			i++
		default:
			return nil, fmt.Errorf("bucket: format %q: unsupported token %q", fmtStr, runes[i])
		}
	}

	if len(fields) != len(entryMap) {
		return nil, fmt.Errorf(
			"bucket: format %q parses to %d fields, entry_map names %d",
			fmtStr, len(fields), len(entryMap),
		)
	}

	total := 0
	for idx := range fields {
		fields[idx].Name = entryMap[idx]
		total += fields[idx].Size
	}

	return &Format{Fields: fields, Size: total}, nil
}
