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

// mainPowLimit is the highest proof of work value a block can have for the
// main network.  It is the value 2^224 - 1.
var mainPowLimit = blockchainutil.NewDifficultyFromHashString(
	"00000000ffffffffffffffffffffffffffffffffffffffffffffffffffffffff")

// MainNetParams returns the network parameters for the main network.
func MainNetParams() *Params {
	// mainPowLimitBits is the main network proof of work limit in its
	// compact representation.
	//
	// Note that due to the limited precision of the compact representation,
	// this is not exactly equal to the pow limit.  It is the value:
	//
	// 0x00000000ffff0000000000000000000000000000000000000000000000000000
	const mainPowLimitBits = 0x1d00ffff // 486604799

	return &Params{
		Name:        "mainnet",
		Net:         0xd9b4bef9,
		DefaultPort: "8338",
		GenesisHash: *newHashFromStr("000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"),

		// Chain parameters
		PowLimit:            mainPowLimit.ToUint256(),
		PowLimitBits:        mainPowLimitBits,
		ReduceMinDifficulty: false,
		NoRetargeting:       false,
		TargetTimePerBlock:  time.Minute * 10,
		TargetTimespan:      time.Hour * 24 * 14, // 2016 blocks
		ForkHeight:          498888,
		ShrinkDiff:          10,

		// Checkpoints ordered from oldest to newest.
		Checkpoints: []Checkpoint{
			{11111, newHashFromStr("0000000069e244f73d78e8fd29ba2fd2ed618bd6fa2ee92559f542fdb26e7c1d")},
			{33333, newHashFromStr("000000002dd5588a74784eaa7ab0507a18ad16a236e7b1ce69f00d7ddfb5d0a6")},
			{74000, newHashFromStr("0000000000573993a3c9e41ce34471c079dcf5f52a0e824a81e7f953b8661a20")},
			{105000, newHashFromStr("00000000000291ce28027faea320c8d2b054b2e0fe44a773f3eefb151d6bdc97")},
			{134444, newHashFromStr("00000000000005b12ffd4cd315cd34ffd4a594f430ac814c91184a0d42d2b0fe")},
			{168000, newHashFromStr("000000000000099e61ea72015e79632f216fe6cb33d7899acb35b75c8303b763")},
			{193000, newHashFromStr("000000000000059f452a5f7340de6682a977387c17010ff6e6c3bd83ca8b1317")},
			{210000, newHashFromStr("000000000000048b95347e83192f69cf0366076336c639f9b7228e9ba171342e")},
			{216116, newHashFromStr("00000000000001b4f4b433e81ee46494af945cf96014816a4e2370f11b23df4e")},
			{225430, newHashFromStr("00000000000001c108384350f74090433e7fcf79a606b8e797f065b130575932")},
			{250000, newHashFromStr("000000000000003887df1f29024b06fc2200b55f8af8f35453d7be294df2d214")},
			{279000, newHashFromStr("0000000000000001ae8c72a0b0c301f67e3afca10e819efa9041e458e9bd7e40")},
			{295000, newHashFromStr("00000000000000004d9b4ef50f0f9d686fd69db2e03af35a100370c64632a983")},
		},

		CheckpointPubKey: hexDecode("02b07503322ba3e1638e2b1a37cb28fb8da365f3e62b5abc951faacce8feb08919"),
	}
}
