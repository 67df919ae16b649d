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

// testNetPowLimit is the highest proof of work value a block can have for the
// test network.  It is the value 2^224 - 1.
var testNetPowLimit = blockchainutil.NewDifficultyFromHashString(
	"00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// TestNet3Params returns the network parameters for the test currency network.
// This network is sometimes simply called "testnet".
func TestNet3Params() *Params {
	return &Params{
		Name:        "testnet3",
		Net:         0x0709110b,
		DefaultPort: "18338",
		GenesisHash: *newHashFromStr("000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943"),

		// Chain parameters
		PowLimit:            testNetPowLimit.ToUint256(),
		PowLimitBits:        0x1d00ffff,
		ReduceMinDifficulty: true,
		NoRetargeting:       false,
		TargetTimePerBlock:  time.Minute * 10,
		TargetTimespan:      time.Hour * 24 * 14, // 2016 blocks
		ForkHeight:          1253000,
		ShrinkDiff:          10,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: []Checkpoint{
			{546, newHashFromStr("000000002a936ca763904c3c35fce2f3556c559c0214345d31b1bcebf76acb70")},
		},

		CheckpointPubKey: hexDecode("0312b937ba9e7ad4fe9dce67f011c75bfb1c435c96dcefbc492ee5ab4e7b14f624"),
	}
}
