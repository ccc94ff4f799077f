// Package shardscan discovers which midx_N / stor_N shard files already
// exist under a shard-set directory. Adapted from the teacher's
// seginfo package: the same "glob, parse trailing number, find the
// max" discovery idiom, stripped of its size-rotation and
// timestamp-suffix naming (this store's shard files are plain
// sequential numbers with no rotation component).
package shardscan

import (
	"path/filepath"
	"slices"

	"github.com/thatch45/maras-go/internal/shardaddr"
	"github.com/thatch45/maras-go/pkg/filesys"
)

// IndexShardNumbers returns every midx_N shard number present under
// dir, sorted ascending.
func IndexShardNumbers(dir string) ([]int, error) {
	return shardNumbers(dir, "midx_*")
}

// StoreShardNumbers returns every stor_N shard number present under
// dir, sorted ascending.
func StoreShardNumbers(dir string) ([]int, error) {
	return shardNumbers(dir, "stor_*")
}

func shardNumbers(dir, glob string) ([]int, error) {
	matches, err := filesys.ReadDir(filepath.Join(dir, glob))
	if err != nil {
		return nil, err
	}

	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := shardaddr.ParseShardNum(filepath.Base(m))
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}

	slices.Sort(nums)
	return nums, nil
}

// LastIndexShard returns the highest existing midx_N shard number under
// dir, or 0 if none exist yet (the probing loop in internal/shardset
// always starts from 1).
func LastIndexShard(dir string) (int, error) {
	nums, err := IndexShardNumbers(dir)
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, nil
	}
	return nums[len(nums)-1], nil
}
