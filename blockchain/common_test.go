// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/wbtcsuite/wbtcd/chaincfg"
)

// genesisTime is the timestamp of the first block of every test chain.
const genesisTime = 1231006505

// fakeBlockHash returns a deterministic hash for a block at the provided height
// on the branch identified by the provided tag.
func fakeBlockHash(tag byte, height int64) chainhash.Hash {
	var b [9]byte
	b[0] = tag
	binary.LittleEndian.PutUint64(b[1:], uint64(height))
	return chainhash.DoubleHashH(b[:])
}

// chainBuilder describes a test chain in terms of the difficulty bits and the
// time since the parent of each block.
type chainBuilder struct {
	tag     byte
	bits    func(height int64) uint32
	spacing func(height int64) int64
}

// constBits returns a bits function that always returns the provided bits.
func constBits(bits uint32) func(int64) uint32 {
	return func(int64) uint32 { return bits }
}

// constSpacing returns a spacing function that always returns the provided
// number of seconds.
func constSpacing(seconds int64) func(int64) int64 {
	return func(int64) int64 { return seconds }
}

// build adds a chain with blocks at heights 0 through tipHeight to a new block
// index and returns the index along with the tip.
func (b *chainBuilder) build(t *testing.T, tipHeight int64) (*BlockIndex, Node) {
	t.Helper()

	bi := NewBlockIndex()
	var tip Node
	var parentHash *chainhash.Hash
	timestamp := int64(genesisTime)
	for height := int64(0); height <= tipHeight; height++ {
		if height > 0 {
			timestamp += b.spacing(height)
		}
		hash := fakeBlockHash(b.tag, height)
		node, err := bi.AddBlock(&hash, parentHash, b.bits(height),
			time.Unix(timestamp, 0))
		if err != nil {
			t.Fatalf("unable to add block at height %d: %v", height, err)
		}
		tip = node
		parentHash = &hash
	}
	return bi, tip
}

// testNode is a minimal Node implementation that allows arbitrary heights and
// links so edge cases can be exercised without building full chains.
type testNode struct {
	hash      chainhash.Hash
	height    int64
	timestamp int64
	bits      uint32
	workSum   uint256.Uint256
	parent    *testNode
}

func (n *testNode) Hash() chainhash.Hash     { return n.hash }
func (n *testNode) Height() int64            { return n.height }
func (n *testNode) Timestamp() int64         { return n.timestamp }
func (n *testNode) Bits() uint32             { return n.bits }
func (n *testNode) WorkSum() uint256.Uint256 { return n.workSum }

func (n *testNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *testNode) Ancestor(height int64) Node {
	if height < 0 || height > n.height {
		return nil
	}
	iter := n
	for iter != nil && iter.height != height {
		iter = iter.parent
	}
	if iter == nil {
		return nil
	}
	return iter
}

// testNodeChain returns the tip of a chain of test nodes ending at tipHeight
// with the provided timestamps, oldest first.  Only len(timestamps) nodes are
// created, so the oldest one has no parent.
func testNodeChain(tipHeight int64, bits uint32, timestamps ...int64) *testNode {
	var tip *testNode
	startHeight := tipHeight - int64(len(timestamps)) + 1
	for i, timestamp := range timestamps {
		height := startHeight + int64(i)
		tip = &testNode{
			hash:      fakeBlockHash(0xee, height),
			height:    height,
			timestamp: timestamp,
			bits:      bits,
			parent:    tip,
		}
	}
	return tip
}

// forkTestParams returns a copy of the main network parameters with the fork
// activating at the provided height.
func forkTestParams(forkHeight int64) *chaincfg.Params {
	params := chaincfg.MainNetParams()
	params.ForkHeight = forkHeight
	return params
}

// legacyTestParams returns a copy of the provided network parameters with the
// fork moved out of reach so only the legacy rules apply.
func legacyTestParams(params *chaincfg.Params) *chaincfg.Params {
	params.ForkHeight = 1 << 40
	return params
}
