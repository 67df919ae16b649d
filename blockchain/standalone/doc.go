// Copyright (c) 2019-2022 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package standalone provides standalone functions for working with the
proof-of-work consensus rules of the chain.

The functions have no dependencies on the chain state, so they are suitable
for header-only clients as well as for the full node's block acceptance path.

# Proof-of-work

  - Converting to and from the compact target difficulty representation with
    separate negative and overflow reporting
  - Converting between work and target values, including the complement
    trick used to invert a work value without representing 2^256
  - Calculating work values based on the compact target difficulty
  - Checking a block hash satisfies a target difficulty and that target
    difficulty is within a valid range

# Errors

Errors returned by this package are of type standalone.RuleError and have full
support for errors.Is and errors.As so the caller can detect the specific
ErrorKind (for example ErrUnexpectedDifficulty or ErrHighHash).
*/
package standalone
