// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Checkpointctl is the administrative tool for dynamic checkpoints.  It signs
block height and hash pairs with the checkpoint key, stores them in the
checkpoint database and inspects what is stored.

Every stored checkpoint must verify against the checkpoint public key of the
selected network, or the key given with --pubkey.

Usage:

	checkpointctl [OPTIONS] <command> [args...]

Commands:

	genkey                        Generate a new checkpoint signing key
	sign <height> <hash> <key>    Sign a checkpoint with the hex private key and store it
	get <height>                  Show the stored checkpoint at a height
	list [height]                 List stored checkpoints above a height (default -1)
	verify                        Verify the signature of every stored checkpoint
	import <file>                 Verify and store the checkpoints of a JSON array file
	target <bits|target>          Decode and validate a compact target or a hex target

Application Options:

	-V, --version        Display version information and exit
	-A, --appdata=       Path to application home directory
	-C, --configfile=    Path to configuration file
	-b, --datadir=       Directory to store data
	    --logdir=        Directory to log output
	    --nofilelogging  Disable file logging
	-d, --debuglevel=    Logging level for all subsystems (default: info)
	    --dbtype=        Database backend to use for the checkpoint store (default: ldb)
	    --pubkey=        Hex encoded public key to verify checkpoints with
	    --testnet        Use the test network
	    --regnet         Use the regression test network

Checkpoints are printed and imported as JSON objects of the form:

	{"height": 500, "hash": "<block hash>", "sig": "<hex DER signature>"}
*/
package main
