// Package shardaddr derives the on-disk directory and shard file names a
// key maps to, mirroring the source's DHM._hm_dir and the literal
// "midx_{n}" / "stor_{n}" naming scheme. It has no state of its own; it
// is pure path arithmetic shared by internal/shardfile,
// internal/shardset, and internal/valuestore so none of them duplicates
// the naming convention.
package shardaddr

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Dir returns the directory under root that key's shard set lives in.
// It mirrors _hm_dir: strip leading/trailing delimiters, drop the final
// path segment (the leaf name contributes nothing to addressing, only
// its parent chain does), and translate the configured delimiter to the
// OS path separator.
func Dir(root, key, delim string) string {
	trimmed := strings.Trim(key, delim)
	idx := strings.LastIndex(trimmed, delim)

	var dirPart string
	if idx < 0 {
		dirPart = ""
	} else {
		dirPart = trimmed[:idx]
	}

	if dirPart == "" {
		return root
	}

	segments := strings.Split(dirPart, delim)
	return filepath.Join(append([]string{root}, segments...)...)
}

// IndexFileName returns the "midx_N" file name for shard number n
// (1-based, per the source's probing loop starting at f_num = 1).
func IndexFileName(n int) string {
	return fmt.Sprintf("midx_%d", n)
}

// StoreFileName returns the "stor_N" file name for shard number n.
func StoreFileName(n int) string {
	return fmt.Sprintf("stor_%d", n)
}

// IndexPath joins dir and the shard number into a full midx_N path.
func IndexPath(dir string, n int) string {
	return filepath.Join(dir, IndexFileName(n))
}

// StorePath joins dir and the shard number into a full stor_N path.
func StorePath(dir string, n int) string {
	return filepath.Join(dir, StoreFileName(n))
}

// ParseShardNum extracts the trailing numeric suffix from a "midx_N" or
// "stor_N" file name, as the source does with fn_[fn_.rindex('_')+1:].
func ParseShardNum(name string) (int, error) {
	idx := strings.LastIndex(name, "_")
	if idx < 0 {
		return 0, fmt.Errorf("shardaddr: %q has no shard-number suffix", name)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("shardaddr: %q: %w", name, err)
	}
	return n, nil
}
