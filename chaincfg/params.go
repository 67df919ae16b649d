// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/math/uint256"
)

// Checkpoint identifies a known good point in the block chain.  Using
// checkpoints allows a few optimizations for old blocks during initial download
// and also prevents forks from old blocks.
type Checkpoint struct {
	Height int64
	Hash   *chainhash.Hash
}

// Params defines a network by its parameters.  These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net uint32

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisHash is the starting block hash.
	GenesisHash chainhash.Hash

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *uint256.Uint256

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// ReduceMinDifficulty defines whether the network should reduce the
	// minimum required difficulty after a long enough period of time has
	// passed without finding a block.  This is really only useful for test
	// networks and should not be set on a main network.
	//
	// The reduced difficulty applies once a block's timestamp is more than
	// twice the target time per block after its parent.
	ReduceMinDifficulty bool

	// NoRetargeting disables the legacy difficulty retarget so every block
	// keeps the difficulty of its parent.  This is only useful for
	// regression testing.
	NoRetargeting bool

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// TargetTimespan is the desired amount of time that should elapse
	// before the legacy block difficulty requirement is examined to
	// determine how it should be changed in order to maintain the desired
	// block generation rate.
	TargetTimespan time.Duration

	// ForkHeight is the height of the first block that is subject to the
	// fork difficulty regime.
	ForkHeight int64

	// ShrinkDiff is the divisor applied to the work implied by the
	// pre-activation window while the fork difficulty is held constant.
	ShrinkDiff uint64

	// Checkpoints ordered from oldest to newest.
	Checkpoints []Checkpoint

	// CheckpointPubKey is the serialized secp256k1 public key dynamic
	// checkpoints must be signed with.
	CheckpointPubKey []byte
}

// DifficultyAdjustmentInterval returns the number of blocks between legacy
// difficulty retargets.
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return int64(p.TargetTimespan / p.TargetTimePerBlock)
}

// IsForkEnabled returns whether a block at the provided height is subject to
// the fork difficulty regime.
func (p *Params) IsForkEnabled(height int64) bool {
	return height >= p.ForkHeight
}

// IsForkHeight returns whether the provided height is the fork activation
// height.
func (p *Params) IsForkHeight(height int64) bool {
	return height == p.ForkHeight
}

// LatestCheckpointHeight returns the height of the most recent checkpoint or
// zero when the network has none.
func (p *Params) LatestCheckpointHeight() int64 {
	if len(p.Checkpoints) == 0 {
		return 0
	}
	return p.Checkpoints[len(p.Checkpoints)-1].Height
}

// CheckpointByHeight returns the static checkpoint at the provided height or
// nil when there is none.
func (p *Params) CheckpointByHeight(height int64) *Checkpoint {
	for i := range p.Checkpoints {
		if p.Checkpoints[i].Height == height {
			return &p.Checkpoints[i]
		}
	}
	return nil
}

// CheckpointPublicKey parses the public key dynamic checkpoints must be signed
// with.
func (p *Params) CheckpointPublicKey() (*secp256k1.PublicKey, error) {
	return secp256k1.ParsePubKey(p.CheckpointPubKey)
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It only differs from the one available in chainhash in that
// it panics on an error since it will only (and must only) be called with
// hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// hexDecode decodes the passed hex string and returns the resulting bytes.  It
// panics if an error occurs.  This is only used in the hard-coded network
// parameters so errors in the source code can be detected.
func hexDecode(hexStr string) []byte {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		panic(err)
	}
	return b
}
