// Package hashreg is a small registry mapping a configured key_hash name
// to the cryptographic hash constructor and digest byte width it produces.
// It exists so that the bucket codec can size its digest field purely from
// the name stored in a database's meta header, without hard-coding a
// single algorithm.
package hashreg

import (
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
)

// Descriptor describes one registered cryptographic key-digest hash.
type Descriptor struct {
	// New constructs a fresh hash.Hash for computing one digest.
	New func() hash.Hash

	// Size is the digest's fixed byte width, used to size the bucket's
	// key field and to compute the bucket record's total length.
	Size int
}

var registry = map[string]Descriptor{
	"sha1":   {New: sha1.New, Size: sha1.Size},
	"sha256": {New: sha256.New, Size: sha256.Size},
}

// Lookup returns the Descriptor registered for name, or an error if name
// is not recognized. Callers validate configuration with this before
// ever computing a digest.
func Lookup(name string) (Descriptor, error) {
	d, ok := registry[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("hashreg: unknown key hash %q", name)
	}
	return d, nil
}

// Digest computes the digest of data using the named hash. It panics if
// name is not registered; callers must validate the name (typically via
// options.Options.Validate) before reaching this path.
func Digest(name string, data []byte) []byte {
	d, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("hashreg: unknown key hash %q", name))
	}
	h := d.New()
	h.Write(data)
	return h.Sum(nil)
}

// Size returns the digest byte width for name, or an error if name is not
// registered.
func Size(name string) (int, error) {
	d, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return d.Size, nil
}
