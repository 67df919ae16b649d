// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package checkpoint implements signed dynamic checkpoints and their persistent
storage, along with the lookups that combine them with the static checkpoints
compiled into the network parameters.

A dynamic checkpoint is a block height and hash pair signed by the network
checkpoint key.  The signature commits to the double SHA-256 of the height as a
little-endian int32 followed by the 32-byte block hash, and is a DER encoded
secp256k1 ECDSA signature.

# Storage

Checkpoints are stored in any database.DB under keys made of the tag byte 'c'
followed by the height as a big-endian uint32, so a cursor visits them in
height order and the keyspace can be shared with unrelated records.  The value
is the height as a variable length quantity, the raw block hash and the
signature prefixed by its CompactSize length.

# Trust

Static checkpoints are trusted unconditionally.  Dynamic checkpoints are only
trusted when their signature verifies against the network checkpoint key.
CheckpointsAfter returns stored entries as they are, while
VerifiedCheckpointsAfter and CheckForkPoint only consider verified ones.

# Errors

Errors returned by this package are either ContextError or RuleError values
wrapping an ErrorKind, so callers may use errors.Is with the kinds directly.
*/
package checkpoint
