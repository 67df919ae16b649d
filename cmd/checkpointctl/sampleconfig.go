// Copyright (c) 2018 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

// sampleConfigFileContents is a string containing the commented example config
// for checkpointctl.
const sampleConfigFileContents = `[Application Options]

; ------------------------------------------------------------------------------
; Data settings
; ------------------------------------------------------------------------------

; The directory to store data such as the checkpoint database.  The network name
; is appended.
; datadir=~/.wbtcd/data

; The directory to store log files.  The network name is appended.
; logdir=~/.wbtcd/logs

; Database backend for the checkpoint store {ldb, badgerdb, boltdb, memdb}.
; dbtype=ldb


; ------------------------------------------------------------------------------
; Network settings
; ------------------------------------------------------------------------------

; Use testnet (cannot be used with regnet=1).
; testnet=1

; Use the regression test network (cannot be used with testnet=1).
; regnet=1

; Verify checkpoints against this hex encoded public key instead of the network
; checkpoint key.
; pubkey=


; ------------------------------------------------------------------------------
; Debug
; ------------------------------------------------------------------------------

; Debug logging level.
; Valid levels are {trace, debug, info, warn, error, critical}
; You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set
; log level for individual subsystems.  Use checkpointctl --debuglevel=show to
; list available subsystems.
; debuglevel=info
`
