// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/crypto/rand"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/wbtcsuite/wbtcd/blockchain/standalone"
	"github.com/wbtcsuite/wbtcd/blockchainutil"
	"github.com/wbtcsuite/wbtcd/checkpoint"
	"github.com/wbtcsuite/wbtcd/database"
	_ "github.com/wbtcsuite/wbtcd/database/badgerdb"
	_ "github.com/wbtcsuite/wbtcd/database/boltdb"
	_ "github.com/wbtcsuite/wbtcd/database/ldb"
	_ "github.com/wbtcsuite/wbtcd/database/memdb"
	"github.com/wbtcsuite/wbtcd/internal/progresslog"
)

const appName = "checkpointctl"

// usageText is shown by the help output.
const usageText = `[OPTIONS] <command> [args...]

Commands:
  genkey                        Generate a new checkpoint signing key
  sign <height> <hash> <key>    Sign a checkpoint with the hex private key and store it
  get <height>                  Show the stored checkpoint at a height
  list [height]                 List stored checkpoints above a height (default -1)
  verify                        Verify the signature of every stored checkpoint
  import <file>                 Verify and store the checkpoints of a JSON array file
  target <bits|target>          Decode and validate a compact target or a hex target`

// cmdContext holds what command handlers operate on.
type cmdContext struct {
	cfg      *config
	out      io.Writer
	registry *checkpoint.Registry
}

// command describes a command line command.
type command struct {
	minArgs    int
	maxArgs    int
	needsStore bool
	handler    func(ctx *cmdContext, args []string) error
}

// commands maps each command name to its description.
var commands = map[string]command{
	"genkey": {0, 0, false, handleGenKey},
	"sign":   {3, 3, true, handleSign},
	"get":    {1, 1, true, handleGet},
	"list":   {0, 1, true, handleList},
	"verify": {0, 0, true, handleVerify},
	"import": {1, 1, true, handleImport},
	"target": {1, 1, false, handleTarget},
}

// commandNames returns the sorted list of supported commands.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// openDB opens the checkpoint database for the configured network, creating
// it when it does not exist yet.
func openDB(cfg *config) (database.DB, error) {
	// The in-memory backend takes no path.
	if cfg.DbType == "memdb" {
		return database.Create(cfg.DbType)
	}

	dbPath := cfg.checkpointDBPath()
	db, err := database.Open(cfg.DbType, dbPath)
	if errors.Is(err, database.ErrDbDoesNotExist) {
		ctlLog.Infof("Creating checkpoint database at %s", dbPath)
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
		db, err = database.Create(cfg.DbType, dbPath)
	}
	if err != nil {
		return nil, err
	}
	ctlLog.Debugf("Opened %s checkpoint database %s", cfg.DbType, dbPath)
	return db, nil
}

// runCommand executes the command named by the first argument and writes its
// output to out.
func runCommand(cfg *config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command specified -- supported commands %v",
			commandNames())
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q -- supported commands %v",
			name, commandNames())
	}
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return fmt.Errorf("wrong number of arguments for %q -- see "+
			"%s --help", name, appName)
	}

	ctx := &cmdContext{cfg: cfg, out: out}
	if cmd.needsStore {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("unable to open checkpoint database: %w",
				err)
		}
		defer db.Close()
		ctx.registry = checkpoint.NewRegistry(cfg.params,
			checkpoint.NewStore(db))
	}

	return cmd.handler(ctx, args)
}

// writeJSON writes the indented JSON encoding of v followed by a newline.
func (ctx *cmdContext) writeJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.out, "%s\n", b)
	return err
}

// parseHeight parses a checkpoint height argument.
func parseHeight(arg string) (int64, error) {
	height, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid height %q: %w", arg, err)
	}
	return height, nil
}

// parseBlockHash parses a block hash given in the byte-reversed display order.
func parseBlockHash(arg string) (*chainhash.Hash, error) {
	if len(arg) != chainhash.MaxHashStringSize {
		return nil, fmt.Errorf("invalid block hash %q: must be %d hex "+
			"characters", arg, chainhash.MaxHashStringSize)
	}
	hash, err := chainhash.NewHashFromStr(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid block hash %q: %w", arg, err)
	}
	return hash, nil
}

// parsePrivateKey parses a hex encoded 32-byte private key.
func parsePrivateKey(arg string) (*secp256k1.PrivateKey, error) {
	keyBytes, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(keyBytes) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf("invalid private key: must be %d bytes",
			secp256k1.PrivKeyBytesLen)
	}
	return secp256k1.PrivKeyFromBytes(keyBytes), nil
}

func handleGenKey(ctx *cmdContext, _ []string) error {
	key, err := secp256k1.GeneratePrivateKeyFromRand(rand.Reader())
	if err != nil {
		return fmt.Errorf("unable to generate key: %w", err)
	}
	defer key.Zero()

	fmt.Fprintf(ctx.out, "private key: %x\n", key.Serialize())
	fmt.Fprintf(ctx.out, "public key:  %x\n", key.PubKey().SerializeCompressed())
	return nil
}

func handleSign(ctx *cmdContext, args []string) error {
	height, err := parseHeight(args[0])
	if err != nil {
		return err
	}
	hash, err := parseBlockHash(args[1])
	if err != nil {
		return err
	}
	key, err := parsePrivateKey(args[2])
	if err != nil {
		return err
	}
	defer key.Zero()

	cp := checkpoint.New(height, hash)
	if err := cp.Sign(key); err != nil {
		return err
	}
	if err := ctx.registry.AddCheckpoint(cp, ctx.cfg.checkpointPubKey); err != nil {
		return err
	}

	ctlLog.Infof("Stored signed checkpoint %v", cp)
	return ctx.writeJSON(cp)
}

func handleGet(ctx *cmdContext, args []string) error {
	height, err := parseHeight(args[0])
	if err != nil {
		return err
	}
	cp, err := ctx.registry.Checkpoint(height)
	if err != nil {
		return err
	}
	return ctx.writeJSON(cp)
}

func handleList(ctx *cmdContext, args []string) error {
	height := int64(-1)
	if len(args) > 0 {
		var err error
		height, err = parseHeight(args[0])
		if err != nil {
			return err
		}
	}

	checkpoints, err := ctx.registry.CheckpointsAfter(height)
	if err != nil {
		return err
	}
	return ctx.writeJSON(checkpoints)
}

func handleVerify(ctx *cmdContext, _ []string) error {
	checkpoints, err := ctx.registry.CheckpointsAfter(-1)
	if err != nil {
		return err
	}

	var bad int
	for i := range checkpoints {
		cp := &checkpoints[i]
		status := "ok"
		if !cp.CheckSignature(ctx.cfg.checkpointPubKey) {
			status = "INVALID SIGNATURE"
			bad++
		}
		fmt.Fprintf(ctx.out, "%d %s %s\n", cp.Height, cp.Hash, status)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d checkpoints have an invalid signature",
			bad, len(checkpoints))
	}
	fmt.Fprintf(ctx.out, "%d checkpoints verified\n", len(checkpoints))
	return nil
}

func handleImport(ctx *cmdContext, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var checkpoints []checkpoint.Checkpoint
	if err := json.Unmarshal(data, &checkpoints); err != nil {
		return fmt.Errorf("unable to parse %s: %w", args[0], err)
	}

	// Nothing is written unless every checkpoint verifies.
	for i := range checkpoints {
		cp := &checkpoints[i]
		if !cp.CheckSignature(ctx.cfg.checkpointPubKey) {
			return fmt.Errorf("checkpoint %v is not signed by the "+
				"checkpoint key -- nothing imported", cp)
		}
	}
	progress := progresslog.New("Imported", ctlLog)
	for i := range checkpoints {
		cp := &checkpoints[i]
		err := ctx.registry.AddCheckpoint(cp, ctx.cfg.checkpointPubKey)
		if err != nil {
			return err
		}
		progress.LogProgress(cp.Height, &cp.Hash, i == len(checkpoints)-1)
	}

	fmt.Fprintf(ctx.out, "imported %d checkpoints\n", len(checkpoints))
	return nil
}

// maxCompactArgLen is the longest argument target treats as compact bits.
const maxCompactArgLen = 10

func handleTarget(ctx *cmdContext, args []string) error {
	arg := args[0]

	var bits uint32
	var dif *blockchainutil.Difficulty
	if len(arg) <= maxCompactArgLen {
		v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 32)
		if err != nil {
			return fmt.Errorf("invalid compact bits %q: %w", arg, err)
		}
		bits = uint32(v)
		_, isNegative, overflows := standalone.DiffBitsToUint256(bits)
		fmt.Fprintf(ctx.out, "bits:       %08x\n", bits)
		fmt.Fprintf(ctx.out, "negative:   %v\n", isNegative)
		fmt.Fprintf(ctx.out, "overflows:  %v\n", overflows)
		dif, err = blockchainutil.NewDifficultyFromCompact(bits)
		if err != nil {
			fmt.Fprintf(ctx.out, "valid:      no (%v)\n", err)
			return nil
		}
	} else {
		var err error
		dif, err = blockchainutil.ParseDifficulty(arg)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", arg, err)
		}
		bits = dif.ToCompact()
		fmt.Fprintf(ctx.out, "bits:       %08x\n", bits)
	}

	powLimit := ctx.cfg.params.PowLimit
	work := standalone.CalcWork(bits)
	fmt.Fprintf(ctx.out, "target:     %s\n", dif.ToHexString())
	fmt.Fprintf(ctx.out, "difficulty: %.8f\n", dif.Relative(powLimit))
	fmt.Fprintf(ctx.out, "work:       %d\n", &work)
	if err := standalone.CheckProofOfWorkRange(bits, powLimit); err != nil {
		fmt.Fprintf(ctx.out, "valid:      no (%v)\n", err)
		return nil
	}
	fmt.Fprintf(ctx.out, "valid:      yes\n")
	return nil
}
