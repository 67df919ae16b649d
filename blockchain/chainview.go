// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// Node is a read-only view of a block in the block index along with the links
// needed to walk back through its ancestors.  Implementations must be
// immutable once they are visible to callers so that the difficulty
// calculations may traverse them without holding any locks.
type Node interface {
	// Hash returns the hash of the block.
	Hash() chainhash.Hash

	// Height returns the height of the block.
	Height() int64

	// Timestamp returns the block time as seconds since the Unix epoch.
	Timestamp() int64

	// Bits returns the compact target difficulty of the block.
	Bits() uint32

	// WorkSum returns the total amount of work in the chain up to and
	// including the block.
	WorkSum() uint256.Uint256

	// Parent returns the parent block or nil for the genesis block.
	Parent() Node

	// Ancestor returns the ancestor at the provided height or nil when the
	// height is negative or after the height of the block.
	Ancestor(height int64) Node
}

// ChainView provides lookups of blocks known to the live chain by their hash.
//
// Implementations must be safe for concurrent access.
type ChainView interface {
	// LookupNode returns the block identified by the provided hash or nil
	// when it is not known.
	LookupNode(hash *chainhash.Hash) Node
}
