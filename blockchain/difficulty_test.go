// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/wbtcsuite/wbtcd/blockchain/standalone"
	"github.com/wbtcsuite/wbtcd/chaincfg"
)

// TestSuitableBlock ensures the suitable block is the timestamp median of a
// block and its two ancestors for every ordering of their timestamps.
func TestSuitableBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string  // test description
		timestamps []int64 // grandparent, parent, block
		want       int64   // expected median timestamp
	}{
		{name: "ascending", timestamps: []int64{50, 100, 200}, want: 100},
		{name: "descending", timestamps: []int64{200, 100, 50}, want: 100},
		{name: "median first", timestamps: []int64{100, 50, 200}, want: 100},
		{name: "median first reversed", timestamps: []int64{100, 200, 50}, want: 100},
		{name: "median last", timestamps: []int64{50, 200, 100}, want: 100},
		{name: "median last reversed", timestamps: []int64{200, 50, 100}, want: 100},
		{name: "duplicate low", timestamps: []int64{7, 7, 9}, want: 7},
		{name: "duplicate high", timestamps: []int64{9, 3, 9}, want: 9},
		{name: "all equal", timestamps: []int64{5, 5, 5}, want: 5},
	}

	for _, test := range tests {
		tip := testNodeChain(2, 0x1d00ffff, test.timestamps...)
		node, err := SuitableBlock(tip)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if node.Timestamp() != test.want {
			t.Errorf("%q: mismatched timestamp -- got %d, want %d", test.name,
				node.Timestamp(), test.want)
			continue
		}

		// The chosen block must be one of the three candidates.
		if node.Height() < 0 || node.Height() > 2 {
			t.Errorf("%q: unexpected height %d", test.name, node.Height())
		}
	}
}

// TestSuitableBlockScenario ensures the block with the median time is selected
// when the grandparent, parent, and block have times 100, 50, and 200.
func TestSuitableBlockScenario(t *testing.T) {
	t.Parallel()

	tip := testNodeChain(10, 0x1d00ffff, 100, 50, 200)
	node, err := SuitableBlock(tip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Timestamp() != 100 || node.Height() != 8 {
		t.Fatalf("unexpected suitable block -- got time %d height %d, want "+
			"time 100 height 8", node.Timestamp(), node.Height())
	}
}

// TestSuitableBlockErrors ensures requesting a suitable block without two
// ancestors results in an assertion error.
func TestSuitableBlockErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node Node
	}{{
		name: "nil block",
		node: nil,
	}, {
		name: "height one",
		node: testNodeChain(1, 0x1d00ffff, 10, 20),
	}, {
		name: "missing grandparent",
		node: testNodeChain(5, 0x1d00ffff, 10, 20),
	}, {
		name: "missing parent",
		node: testNodeChain(5, 0x1d00ffff, 10),
	}}

	for _, test := range tests {
		_, err := SuitableBlock(test.node)
		var aErr AssertError
		if !errors.As(err, &aErr) {
			t.Errorf("%q: unexpected error -- got %v, want AssertError",
				test.name, err)
		}
	}
}

// TestLegacyNonIntervalKeepsBits ensures the legacy regime returns the
// previous bits unchanged when the next block is not on a retarget interval
// boundary and the minimum difficulty rule is disabled.
func TestLegacyNonIntervalKeepsBits(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.MainNetParams())
	if params.DifficultyAdjustmentInterval() != 2016 {
		t.Fatalf("unexpected interval %d",
			params.DifficultyAdjustmentInterval())
	}

	const prevBits = 0x1c0ffff0
	prevNode := testNodeChain(2014, prevBits, genesisTime)
	for _, offset := range []int64{0, 600, 1201, 86400} {
		newTime := time.Unix(prevNode.Timestamp()+offset, 0)
		bits, err := CalcNextRequiredDifficulty(prevNode, newTime, params)
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", offset, err)
		}
		if bits != prevBits {
			t.Fatalf("offset %d: mismatched bits -- got %08x, want %08x",
				offset, bits, uint32(prevBits))
		}
	}
}

// TestNoRetargeting ensures networks that do not retarget keep the previous
// bits at interval boundaries regardless of the timespan.
func TestNoRetargeting(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.RegNetParams())
	params.ReduceMinDifficulty = false
	interval := params.DifficultyAdjustmentInterval()

	const bits = 0x1e00ffff
	for _, spacing := range []int64{1, 600, 100000} {
		builder := chainBuilder{tag: 1, bits: constBits(bits),
			spacing: constSpacing(spacing)}
		_, tip := builder.build(t, interval-1)

		newTime := time.Unix(tip.Timestamp()+spacing, 0)
		got, err := CalcNextRequiredDifficulty(tip, newTime, params)
		if err != nil {
			t.Fatalf("spacing %d: unexpected error: %v", spacing, err)
		}
		if got != bits {
			t.Fatalf("spacing %d: mismatched bits -- got %08x, want %08x",
				spacing, got, uint32(bits))
		}

		got = CalcRetargetDifficulty(tip, tip.Timestamp()-spacing*interval*10,
			params)
		if got != bits {
			t.Fatalf("spacing %d: mismatched retarget bits -- got %08x, "+
				"want %08x", spacing, got, uint32(bits))
		}
	}
}

// TestCalcRetargetDifficulty ensures the legacy retarget scales the previous
// target by the actual timespan limited to a factor of four and clamps the
// result to the proof-of-work limit.
func TestCalcRetargetDifficulty(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.MainNetParams())
	targetTimespan := int64(params.TargetTimespan / time.Second)

	tests := []struct {
		name     string // test description
		bits     uint32 // bits of the last block in the interval
		timespan int64  // actual timespan of the interval
		want     uint32 // expected bits
	}{{
		name:     "exact timespan",
		bits:     0x1c00ffff,
		timespan: targetTimespan,
		want:     0x1c00ffff,
	}, {
		name:     "slow interval limited to 4x",
		bits:     0x1c00ffff,
		timespan: targetTimespan * 10,
		want:     0x1c03fffc,
	}, {
		name:     "fast interval limited to 1/4",
		bits:     0x1c00ffff,
		timespan: targetTimespan / 10,
		want:     0x1b3fffc0,
	}, {
		name:     "exactly 4x",
		bits:     0x1c00ffff,
		timespan: targetTimespan * 4,
		want:     0x1c03fffc,
	}, {
		name:     "easier than limit clamps to limit",
		bits:     0x1d00ffff,
		timespan: targetTimespan * 2,
		want:     0x1d00ffff,
	}, {
		name:     "negative timespan limited to 1/4",
		bits:     0x1c00ffff,
		timespan: -100,
		want:     0x1b3fffc0,
	}}

	for _, test := range tests {
		lastNode := testNodeChain(2015, test.bits, genesisTime+test.timespan)
		got := CalcRetargetDifficulty(lastNode, genesisTime, params)
		if got != test.want {
			t.Errorf("%q: mismatched bits -- got %08x, want %08x", test.name,
				got, test.want)
		}
	}
}

// TestLegacyIntervalRetarget ensures the full legacy path retargets at the
// interval boundary using the block interval-1 blocks before the previous
// block as the start of the window.
func TestLegacyIntervalRetarget(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.MainNetParams())
	interval := params.DifficultyAdjustmentInterval()
	builder := chainBuilder{tag: 2, bits: constBits(0x1d00ffff),
		spacing: constSpacing(600)}
	_, tip := builder.build(t, interval-1)

	// The window spans interval-1 block times, so the target is slightly
	// lowered even though every block took exactly the target time.
	newTime := time.Unix(tip.Timestamp()+600, 0)
	got, err := CalcNextRequiredDifficulty(tip, newTime, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint32(0x1d00ffde); got != want {
		t.Fatalf("mismatched bits -- got %08x, want %08x", got, want)
	}

	// A broken chain that lacks the start of the window is an assertion.
	orphan := testNodeChain(interval-1, 0x1d00ffff, genesisTime)
	_, err = CalcNextRequiredDifficulty(orphan, newTime, params)
	var aErr AssertError
	if !errors.As(err, &aErr) {
		t.Fatalf("unexpected error -- got %v, want AssertError", err)
	}
}

// TestMinDifficultyRule ensures the legacy regime allows minimum difficulty
// blocks after twice the target spacing and otherwise walks back over special
// minimum difficulty blocks to find the real difficulty.
func TestMinDifficultyRule(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.TestNet3Params())
	params.TargetTimespan = params.TargetTimePerBlock * 10
	powLimitBits := params.PowLimitBits
	const realBits = 0x1c00ffff

	tests := []struct {
		name      string                    // test description
		bits      func(height int64) uint32 // bits per height
		tipHeight int64                     // height of the previous block
		offset    int64                     // new block time after previous
		want      uint32                    // expected bits
	}{{
		name: "late block gets minimum difficulty",
		bits: func(height int64) uint32 {
			return realBits
		},
		tipHeight: 14,
		offset:    1201,
		want:      powLimitBits,
	}, {
		name: "exactly twice spacing keeps real difficulty",
		bits: func(height int64) uint32 {
			return realBits
		},
		tipHeight: 14,
		offset:    1200,
		want:      realBits,
	}, {
		name: "walk back over minimum difficulty blocks",
		bits: func(height int64) uint32 {
			if height >= 12 {
				return powLimitBits
			}
			return realBits
		},
		tipHeight: 15,
		offset:    600,
		want:      realBits,
	}, {
		name: "walk stops at interval boundary",
		bits: func(height int64) uint32 {
			if height >= 10 {
				return powLimitBits
			}
			return realBits
		},
		tipHeight: 15,
		offset:    600,
		want:      powLimitBits,
	}, {
		name: "walk stops at genesis",
		bits: func(height int64) uint32 {
			return powLimitBits
		},
		tipHeight: 8,
		offset:    600,
		want:      powLimitBits,
	}}

	for _, test := range tests {
		builder := chainBuilder{tag: 3, bits: test.bits,
			spacing: constSpacing(600)}
		_, tip := builder.build(t, test.tipHeight)

		newTime := time.Unix(tip.Timestamp()+test.offset, 0)
		got, err := CalcNextRequiredDifficulty(tip, newTime, params)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: mismatched bits -- got %08x, want %08x", test.name,
				got, test.want)
		}
	}
}

// TestGenesisDifficulty ensures the block after nothing requires the limit.
func TestGenesisDifficulty(t *testing.T) {
	t.Parallel()

	params := chaincfg.MainNetParams()
	got, err := CalcNextRequiredDifficulty(nil, time.Unix(genesisTime, 0),
		params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != params.PowLimitBits {
		t.Fatalf("mismatched bits -- got %08x, want %08x", got,
			params.PowLimitBits)
	}
}

// TestForkHeightReset ensures the difficulty resets to the limit at the fork
// activation height.
func TestForkHeightReset(t *testing.T) {
	t.Parallel()

	params := forkTestParams(500000)
	prevNode := testNodeChain(499999, 0x1b0404cb, genesisTime)
	newTime := time.Unix(prevNode.Timestamp()+600, 0)

	want := standalone.Uint256ToDiffBits(params.PowLimit)
	got, err := CalcNextRequiredDifficulty(prevNode, newTime, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("mismatched bits -- got %08x, want %08x", got, want)
	}
	got, err = CalcForkRequiredDifficulty(prevNode, newTime, params)
	if err != nil || got != want {
		t.Fatalf("mismatched direct bits -- got %08x (err %v), want %08x",
			got, err, want)
	}
}

// TestChangelessTarget ensures the difficulty during the fork transition is
// derived from the pre-activation window, shrunk by the configured divisor,
// and held constant for every transition block.
func TestChangelessTarget(t *testing.T) {
	t.Parallel()

	const forkHeight = 300
	params := forkTestParams(forkHeight)
	builder := chainBuilder{tag: 4, bits: constBits(0x1b00ffff),
		spacing: constSpacing(600)}
	bi, tip := builder.build(t, forkHeight+forkTransitionBlocks+5)

	// The window ending just before activation did exactly the work of its
	// bits per target spacing, so the shrunk work is a tenth of that.
	work := standalone.CalcWork(0x1b00ffff)
	work.DivUint64(params.ShrinkDiff)
	wantTarget := standalone.WorkToTarget(&work)
	want := standalone.Uint256ToDiffBits(&wantTarget)
	if want != 0x1b09fff6 {
		t.Fatalf("unexpected expected bits %08x", want)
	}

	target, err := ChangelessTarget(tip, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !target.Eq(&wantTarget) {
		t.Fatalf("mismatched target -- got %x, want %x", &target, &wantTarget)
	}

	for height := int64(forkHeight); height < forkHeight+forkTransitionBlocks-1; height++ {
		hash := fakeBlockHash(4, height)
		prevNode := bi.LookupNode(&hash)
		newTime := time.Unix(prevNode.Timestamp()+600, 0)
		got, err := CalcNextRequiredDifficulty(prevNode, newTime, params)
		if err != nil {
			t.Fatalf("height %d: unexpected error: %v", height+1, err)
		}
		if got != want {
			t.Fatalf("height %d: mismatched bits -- got %08x, want %08x",
				height+1, got, want)
		}
	}

	// The block at the fork height itself is reset to the limit.
	hash := fakeBlockHash(4, forkHeight-1)
	prevNode := bi.LookupNode(&hash)
	got, err := CalcNextRequiredDifficulty(prevNode,
		time.Unix(prevNode.Timestamp()+600, 0), params)
	if err != nil || got != params.PowLimitBits {
		t.Fatalf("mismatched activation bits -- got %08x (err %v), want "+
			"%08x", got, err, params.PowLimitBits)
	}

	// A chain that does not reach back to the pre-activation window is an
	// assertion.
	orphan := testNodeChain(forkHeight+10, 0x1b00ffff, 1, 2, 3)
	_, err = ChangelessTarget(orphan, params)
	var aErr AssertError
	if !errors.As(err, &aErr) {
		t.Fatalf("unexpected error -- got %v, want AssertError", err)
	}
}

// TestForkRetarget ensures the fork regime retargets from the work done over
// the lookback window once the transition is over and bounds the timespan.
func TestForkRetarget(t *testing.T) {
	t.Parallel()

	const forkHeight = 300
	params := forkTestParams(forkHeight)
	tipHeight := int64(forkHeight + forkTransitionBlocks + 20)

	tests := []struct {
		name    string // test description
		spacing int64  // seconds between blocks
		want    uint32 // expected bits
	}{
		{name: "on schedule", spacing: 600, want: 0x1b00ffff},
		{name: "twice as slow", spacing: 1200, want: 0x1b01fffe},
		{name: "slower than the bound", spacing: 3000, want: 0x1b01fffe},
	}

	for _, test := range tests {
		builder := chainBuilder{tag: 5, bits: constBits(0x1b00ffff),
			spacing: constSpacing(test.spacing)}
		_, tip := builder.build(t, tipHeight)

		newTime := time.Unix(tip.Timestamp()+test.spacing, 0)
		got, err := CalcNextRequiredDifficulty(tip, newTime, params)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: mismatched bits -- got %08x, want %08x", test.name,
				got, test.want)
		}
	}

	// Faster than the lower bound produces the same result as the bound.
	var results [2]uint32
	for i, spacing := range []int64{60, 300} {
		builder := chainBuilder{tag: 6, bits: constBits(0x1b00ffff),
			spacing: constSpacing(spacing)}
		_, tip := builder.build(t, tipHeight)
		bits, err := CalcNextRequiredDifficulty(tip,
			time.Unix(tip.Timestamp()+spacing, 0), params)
		if err != nil {
			t.Fatalf("spacing %d: unexpected error: %v", spacing, err)
		}
		results[i] = bits
	}
	if results[0] != results[1] {
		t.Fatalf("lower timespan bound not applied -- got %08x and %08x",
			results[0], results[1])
	}
}

// TestForkMinDifficulty ensures the fork regime allows minimum difficulty
// blocks on networks that reduce the minimum difficulty.
func TestForkMinDifficulty(t *testing.T) {
	t.Parallel()

	params := chaincfg.TestNet3Params()
	params.ForkHeight = 300
	builder := chainBuilder{tag: 7, bits: constBits(0x1b00ffff),
		spacing: constSpacing(600)}
	_, tip := builder.build(t, 500)

	got, err := CalcNextRequiredDifficulty(tip,
		time.Unix(tip.Timestamp()+1201, 0), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != params.PowLimitBits {
		t.Fatalf("mismatched bits -- got %08x, want %08x", got,
			params.PowLimitBits)
	}

	got, err = CalcNextRequiredDifficulty(tip,
		time.Unix(tip.Timestamp()+600, 0), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == params.PowLimitBits {
		t.Fatal("on time block unexpectedly got minimum difficulty")
	}
}

// TestForkClampsToLimit ensures fork targets easier than the limit are clamped.
func TestForkClampsToLimit(t *testing.T) {
	t.Parallel()

	params := forkTestParams(300)
	builder := chainBuilder{tag: 8, bits: constBits(0x1d00ffff),
		spacing: constSpacing(3000)}
	_, tip := builder.build(t, 500)

	got, err := CalcNextRequiredDifficulty(tip,
		time.Unix(tip.Timestamp()+600, 0), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != params.PowLimitBits {
		t.Fatalf("mismatched bits -- got %08x, want %08x", got,
			params.PowLimitBits)
	}
}

// TestCheckBlockDifficulty ensures blocks claiming the wrong difficulty or
// failing the proof of work are rejected with the expected kinds.
func TestCheckBlockDifficulty(t *testing.T) {
	t.Parallel()

	params := legacyTestParams(chaincfg.RegNetParams())
	params.ReduceMinDifficulty = false
	builder := chainBuilder{tag: 9, bits: constBits(0x207fffff),
		spacing: constSpacing(600)}
	_, tip := builder.build(t, 5)
	newTime := time.Unix(tip.Timestamp()+600, 0)

	var lowHash chainhash.Hash
	err := CheckBlockDifficulty(tip, &lowHash, 0x207fffff, newTime, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = CheckBlockDifficulty(tip, &lowHash, 0x1d00ffff, newTime, params)
	if !errors.Is(err, ErrUnexpectedDifficulty) {
		t.Fatalf("unexpected error -- got %v, want %v", err,
			ErrUnexpectedDifficulty)
	}

	highHash := chainhash.Hash{31: 0xff}
	err = CheckBlockDifficulty(tip, &highHash, 0x207fffff, newTime, params)
	if !errors.Is(err, standalone.ErrHighHash) {
		t.Fatalf("unexpected error -- got %v, want %v", err,
			standalone.ErrHighHash)
	}
}
