// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/wbtcsuite/wbtcd/blockchain/standalone"
)

// blockNode represents a block within the block chain and is primarily used to
// aid in selecting the best chain and calculating difficulty.
type blockNode struct {
	// parent is the parent block for this node.
	parent *blockNode

	// skipToAncestor is used to provide a skip list to significantly speed up
	// traversal to ancestors deep in history.
	skipToAncestor *blockNode

	// hash is the hash of the block this node represents.
	hash chainhash.Hash

	// workSum is the total amount of work in the chain up to and including
	// this node.
	workSum uint256.Uint256

	// Some fields from block headers needed for difficulty calculations.
	// These must be treated as immutable.
	height    int64
	timestamp int64
	bits      uint32
}

// Ensure blockNode implements the Node interface.
var _ Node = (*blockNode)(nil)

// clearLowestOneBit clears the lowest set bit in the passed value.
func clearLowestOneBit(n int64) int64 {
	return n & (n - 1)
}

// calcSkipListHeight calculates the height of an ancestor block to use when
// constructing the ancestor traversal skip list.
func calcSkipListHeight(height int64) int64 {
	if height < 0 {
		return 0
	}

	// Traditional skip lists create multiple levels to achieve expected average
	// search, insert, and delete costs of O(log n).  Since the blockchain is
	// append only, there is no need to handle random insertions or deletions,
	// so this takes advantage of that to effectively create a deterministic
	// skip list with a single level that is reasonably close to O(log n) in
	// order to reduce the number of pointers and implementation complexity.
	//
	// Clearing the two lowest set bits is not the fewest possible steps, but
	// the worst case is 420 steps for heights up to 2^32.  The only real
	// requirement for proper operation of the skip list is for the calculated
	// height to be less than the provided height.
	return clearLowestOneBit(clearLowestOneBit(height))
}

// newBlockNode returns a new block node for the given block details and parent
// node.  The workSum is calculated based on the parent, or, in the case no
// parent is provided, it will just be the work for the passed block.
func newBlockNode(hash *chainhash.Hash, bits uint32, timestamp int64, parent *blockNode) *blockNode {
	node := &blockNode{
		hash:      *hash,
		workSum:   standalone.CalcWork(bits),
		timestamp: timestamp,
		bits:      bits,
	}
	if parent != nil {
		node.parent = parent
		node.height = parent.height + 1
		node.skipToAncestor = parent.ancestor(calcSkipListHeight(node.height))
		node.workSum.Add(&parent.workSum)
	}
	return node
}

// Hash returns the hash of the block the node represents.
func (node *blockNode) Hash() chainhash.Hash {
	return node.hash
}

// Height returns the height of the block the node represents.
func (node *blockNode) Height() int64 {
	return node.height
}

// Timestamp returns the block time as seconds since the Unix epoch.
func (node *blockNode) Timestamp() int64 {
	return node.timestamp
}

// Bits returns the compact target difficulty of the block.
func (node *blockNode) Bits() uint32 {
	return node.bits
}

// WorkSum returns the total amount of work in the chain up to and including
// the block.
func (node *blockNode) WorkSum() uint256.Uint256 {
	return node.workSum
}

// Parent returns the parent node or nil for the genesis block.
//
// This function is safe for concurrent access.
func (node *blockNode) Parent() Node {
	if node.parent == nil {
		return nil
	}
	return node.parent
}

// ancestor returns the ancestor block node at the provided height by following
// the chain backwards from this node.  The returned block will be nil when a
// height is requested that is after the height of the passed node or is less
// than zero.
//
// This function is safe for concurrent access.
func (node *blockNode) ancestor(height int64) *blockNode {
	if height < 0 || height > node.height {
		return nil
	}

	n := node
	for n != nil && n.height != height {
		// Skip to the linked ancestor when it won't overshoot the target
		// height.
		if n.skipToAncestor != nil && calcSkipListHeight(n.height) >= height {
			n = n.skipToAncestor
			continue
		}

		n = n.parent
	}

	return n
}

// Ancestor returns the ancestor at the provided height.  See ancestor for
// details.
//
// This function is safe for concurrent access.
func (node *blockNode) Ancestor(height int64) Node {
	if n := node.ancestor(height); n != nil {
		return n
	}
	return nil
}

// BlockIndex provides facilities for keeping track of an in-memory index of the
// block chain.  Although the name block chain suggests a single chain of
// blocks, it is actually a tree-shaped structure where any node can have
// multiple children.
//
// It implements ChainView and the nodes it returns implement Node, so it can
// be used directly with the difficulty calculations and checkpoint lookups.
type BlockIndex struct {
	// These following fields are protected by the embedded mutex.
	//
	// index contains an entry for every known block tracked by the block
	// index.
	//
	// genesis is the root of the tree.
	//
	// bestHeader tracks the highest work block node in the index.
	sync.RWMutex
	index      map[chainhash.Hash]*blockNode
	genesis    *blockNode
	bestHeader *blockNode
}

// Ensure BlockIndex implements the ChainView interface.
var _ ChainView = (*BlockIndex)(nil)

// NewBlockIndex returns a new empty instance of a block index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		index: make(map[chainhash.Hash]*blockNode),
	}
}

// AddBlock creates a node for the block with the provided details and adds it
// to the index.  A nil parent hash denotes the genesis block, which must be
// the first block added.  Every other block must connect to a block already in
// the index.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) AddBlock(hash *chainhash.Hash, parentHash *chainhash.Hash, bits uint32, timestamp time.Time) (Node, error) {
	unixTime := timestamp.Unix()
	if unixTime < 0 || unixTime > math.MaxUint32 {
		str := fmt.Sprintf("block %s timestamp %v is not representable in a "+
			"block header", hash, timestamp)
		return nil, contextError(ErrInvalidTime, str)
	}

	bi.Lock()
	defer bi.Unlock()

	if _, ok := bi.index[*hash]; ok {
		str := fmt.Sprintf("already have block %s", hash)
		return nil, contextError(ErrDuplicateBlock, str)
	}

	var parent *blockNode
	if parentHash == nil {
		if bi.genesis != nil {
			str := fmt.Sprintf("block %s does not connect to genesis block %s",
				hash, bi.genesis.hash)
			return nil, contextError(ErrMissingParent, str)
		}
	} else {
		parent = bi.index[*parentHash]
		if parent == nil {
			str := fmt.Sprintf("previous block %s is not known", parentHash)
			return nil, contextError(ErrMissingParent, str)
		}
	}

	node := newBlockNode(hash, bits, unixTime, parent)
	bi.index[node.hash] = node
	if parent == nil {
		bi.genesis = node
	}
	if bi.bestHeader == nil || node.workSum.Gt(&bi.bestHeader.workSum) {
		bi.bestHeader = node
	}

	log.Tracef("Added block %s (height %d, bits %08x)", hash, node.height,
		bits)
	return node, nil
}

// lookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function MUST be called with the block index lock held (for reads).
func (bi *BlockIndex) lookupNode(hash *chainhash.Hash) *blockNode {
	return bi.index[*hash]
}

// LookupNode returns the block node identified by the provided hash.  It will
// return nil if there is no entry for the hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) LookupNode(hash *chainhash.Hash) Node {
	bi.RLock()
	node := bi.lookupNode(hash)
	bi.RUnlock()
	if node == nil {
		return nil
	}
	return node
}

// HaveBlock returns whether or not the block index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) HaveBlock(hash *chainhash.Hash) bool {
	bi.RLock()
	node := bi.lookupNode(hash)
	bi.RUnlock()
	return node != nil
}

// BestHeader returns the block with the most cumulative work, or nil when the
// index is empty.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) BestHeader() Node {
	bi.RLock()
	node := bi.bestHeader
	bi.RUnlock()
	if node == nil {
		return nil
	}
	return node
}

// NodeByHash returns the node for the provided hash or an error with the kind
// ErrUnknownBlock when it is not known.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) NodeByHash(hash *chainhash.Hash) (Node, error) {
	node := bi.LookupNode(hash)
	if node == nil {
		return nil, unknownBlockError(hash)
	}
	return node, nil
}
