// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements the difficulty retarget rules of the chain.

The required difficulty of the next block is computed from a read-only view
of its ancestors expressed by the Node interface.  Two regimes exist:

  - Before the fork activation height, the legacy rules retarget once every
    DifficultyAdjustmentInterval blocks, scaling the previous target by the
    actual timespan of the interval limited to a factor of four.  Networks
    that reduce the minimum difficulty allow a block at the limit after twice
    the target time per block has elapsed.
  - From the fork activation height on, every block is retargeted from the
    work done between the suitable blocks roughly a day apart.  The difficulty
    resets to the limit at the activation height and is held at a value derived
    from the window just before activation during the transition.

A suitable block is the block with the median timestamp among a block and its
two ancestors, which keeps a single skewed timestamp from swinging the result.

The package also provides BlockIndex, an in-memory index of block nodes which
implements ChainView and tracks the cumulative work of every branch.

# Errors

Errors returned by this package are either of type AssertError, which means a
required ancestor is missing and the block index is corrupt, or wrap one of
the ErrorKind values so errors.Is can be used to determine the reason.
*/
package blockchain
