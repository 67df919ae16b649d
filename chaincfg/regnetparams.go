// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/wbtcsuite/wbtcd/blockchainutil"
)

// regNetPowLimit is the highest proof of work value a block can have for the
// regression test network.  It is the value 2^255 - 1.
var regNetPowLimit = blockchainutil.NewDifficultyFromHashString(
	"7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// RegNetPrivKey is the private key dynamic checkpoints on the regression test
// network are signed with.  It is public so tests and local tooling can sign
// checkpoints and must never be used for anything else.
const RegNetPrivKey = "2e47588cdff3d19f2debd97f24020778fcb90ef750a2459869f8770db7dd6267"

// RegNetParams returns the network parameters for the regression test network.
// This should not be confused with the public test network.
//
// Since the purpose of this network is primarily for unit testing, its
// difficulty never retargets under the legacy rules and the fork regime
// activates early.
func RegNetParams() *Params {
	return &Params{
		Name:        "regnet",
		Net:         0xdab5bffa,
		DefaultPort: "18444",
		GenesisHash: *newHashFromStr("0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206"),

		// Chain parameters
		PowLimit:            regNetPowLimit.ToUint256(),
		PowLimitBits:        0x207fffff,
		ReduceMinDifficulty: true,
		NoRetargeting:       true,
		TargetTimePerBlock:  time.Minute * 10,
		TargetTimespan:      time.Hour * 24 * 14, // 2016 blocks
		ForkHeight:          1000,
		ShrinkDiff:          10,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: nil,

		CheckpointPubKey: hexDecode("02f675f84c7766f11cf01b6811cc03eafc80762a3766872aef56255fb7f9b8904c"),
	}
}
