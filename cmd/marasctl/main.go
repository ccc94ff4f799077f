// Command marasctl is a small playground CLI for a maras database.
//
// Usage:
//
//	marasctl create --dir <path> [--index <name>] [--hash-limit N] [--key-hash sha1|sha256]
//	marasctl insert --dir <path> --index <name> --key <key> --data <string> [--id <id>]
//	marasctl get --dir <path> --index <name> --key <key>
//	marasctl history --dir <path> --index <name> --key <key>
//	marasctl inspect --dir <path> --index <name> --shard-key <key>
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/thatch45/maras-go/internal/shardaddr"
	marasErrors "github.com/thatch45/maras-go/pkg/errors"
	"github.com/thatch45/maras-go/pkg/maras"
	"github.com/thatch45/maras-go/pkg/options"
	"github.com/thatch45/maras-go/pkg/shardscan"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage())
	}

	switch args[0] {
	case "create":
		return cmdCreate(args[1:])
	case "insert":
		return cmdInsert(args[1:])
	case "get":
		return cmdGet(args[1:])
	case "history":
		return cmdHistory(args[1:])
	case "inspect":
		return cmdInspect(args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage())
		return nil
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage())
	}
}

func usage() string {
	return `marasctl - inspect and exercise a maras database

Commands:
  create   --dir <path> [--index <name>] [--hash-limit N] [--key-hash sha1|sha256]
  insert   --dir <path> --index <name> --key <key> --data <string> [--id <id>]
  get      --dir <path> --index <name> --key <key>
  history  --dir <path> --index <name> --key <key>
  inspect  --dir <path> --index <name> --shard-key <key>`
}

func cmdCreate(args []string) error {
	fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
	dir := fs.String("dir", "", "database directory (required)")
	index := fs.String("index", "default", "index name to register after create")
	hashLimit := fs.Uint64("hash-limit", 0, "bucket-count mask, must be 2^n-1 (0 keeps the default)")
	keyHash := fs.String("key-hash", "", "key digest hash: sha1 or sha256 (empty keeps the default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("create: --dir is required")
	}

	var opts []options.OptionFunc
	opts = append(opts, options.WithDataDir(*dir))
	if *hashLimit != 0 {
		opts = append(opts, options.WithHashLimit(*hashLimit))
	}
	if *keyHash != "" {
		opts = append(opts, options.WithKeyHash(*keyHash))
	}

	db, err := maras.Create("marasctl", opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	if *index != "" {
		if err := db.AddIndex(*index); err != nil {
			return err
		}
	}

	fmt.Printf("created database at %s\n", *dir)
	return nil
}

func cmdInsert(args []string) error {
	fs := pflag.NewFlagSet("insert", pflag.ContinueOnError)
	dir := fs.String("dir", "", "database directory (required)")
	index := fs.String("index", "default", "index name")
	key := fs.String("key", "", "key to insert (required)")
	data := fs.String("data", "", "payload to store (required)")
	id := fs.String("id", "", "record id (random if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *key == "" {
		return errors.New("insert: --dir and --key are required")
	}

	db, err := maras.Open("marasctl", options.WithDataDir(*dir))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AddIndex(*index); err != nil && !isAlreadyExists(err) {
		return err
	}

	refs, err := db.Insert(*key, []byte(*data), *id)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdGet(args []string) error {
	fs := pflag.NewFlagSet("get", pflag.ContinueOnError)
	dir := fs.String("dir", "", "database directory (required)")
	index := fs.String("index", "default", "index name")
	key := fs.String("key", "", "key to look up (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *key == "" {
		return errors.New("get: --dir and --key are required")
	}

	db, err := maras.Open("marasctl", options.WithDataDir(*dir))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AddIndex(*index); err != nil && !isAlreadyExists(err) {
		return err
	}

	data, err := db.Get(*index, *key)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func cmdHistory(args []string) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	dir := fs.String("dir", "", "database directory (required)")
	index := fs.String("index", "default", "index name")
	key := fs.String("key", "", "key to look up (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *key == "" {
		return errors.New("history: --dir and --key are required")
	}

	db, err := maras.Open("marasctl", options.WithDataDir(*dir))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AddIndex(*index); err != nil && !isAlreadyExists(err) {
		return err
	}

	entries, err := db.History(*index, *key)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func cmdInspect(args []string) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	dir := fs.String("dir", "", "database directory (required)")
	index := fs.String("index", "default", "index name")
	shardKey := fs.String("shard-key", "", "key whose shard-set directory to inspect (required)")
	delim := fs.String("key-delim", "/", "key delimiter used to derive the shard directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" || *shardKey == "" {
		return errors.New("inspect: --dir and --shard-key are required")
	}

	shardDir := shardaddr.Dir(filepath.Join(*dir, *index), *shardKey, *delim)

	indexNums, err := shardscan.IndexShardNumbers(shardDir)
	if err != nil {
		return err
	}
	storeNums, err := shardscan.StoreShardNumbers(shardDir)
	if err != nil {
		return err
	}

	out := map[string]any{
		"dir":        shardDir,
		"midxShards": indexNums,
		"storShards": storeNums,
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func isAlreadyExists(err error) bool {
	ee, ok := marasErrors.AsEngineError(err)
	return ok && ee.Code() == marasErrors.ErrorCodeAlreadyExists
}
