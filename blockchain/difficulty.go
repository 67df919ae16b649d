// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/wbtcsuite/wbtcd/blockchain/standalone"
	"github.com/wbtcsuite/wbtcd/chaincfg"
)

const (
	// forkLookback is the number of blocks between the suitable blocks that
	// bound the fork retarget window.
	forkLookback = 144

	// forkTransitionBlocks is the number of blocks after activation for
	// which the fork regime holds the difficulty derived from the
	// pre-activation window.
	forkTransitionBlocks = 149

	// changelessFirstOffset and changelessLastOffset are the distances below
	// the fork height of the blocks bounding the pre-activation window.
	changelessFirstOffset = 146
	changelessLastOffset  = 2

	// minForkTimespanBlocks and maxForkTimespanBlocks bound the actual
	// timespan of the fork retarget window in units of the target time per
	// block.
	minForkTimespanBlocks = 72
	maxForkTimespanBlocks = 288
)

// targetSpacing returns the target time per block in seconds.
func targetSpacing(params *chaincfg.Params) int64 {
	return int64(params.TargetTimePerBlock / time.Second)
}

// minDifficultyAllowed returns whether the network allows a minimum difficulty
// block at the provided time after the given previous block.
func minDifficultyAllowed(prevNode Node, newBlockTime time.Time, params *chaincfg.Params) bool {
	if !params.ReduceMinDifficulty {
		return false
	}
	maxTime := prevNode.Timestamp() + 2*targetSpacing(params)
	return newBlockTime.Unix() > maxTime
}

// findPrevNonMinDifficultyBits returns the difficulty bits of the first block
// that is not a special minimum difficulty block, walking back from the
// provided node and stopping at retarget interval boundaries and the genesis
// block.
func findPrevNonMinDifficultyBits(startNode Node, params *chaincfg.Params) uint32 {
	interval := params.DifficultyAdjustmentInterval()
	iterNode := startNode
	for {
		parent := iterNode.Parent()
		if parent == nil || iterNode.Height()%interval == 0 ||
			iterNode.Bits() != params.PowLimitBits {
			break
		}
		iterNode = parent
	}
	return iterNode.Bits()
}

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after the passed previous block node based on the difficulty retarget rules.
// The fork regime applies from the fork activation height on and the legacy
// interval retarget applies before it.
//
// A nil previous node denotes the genesis block, which always requires the
// proof-of-work limit.
//
// The caller must ensure the nodes reachable from prevNode are not modified
// during the call.  An AssertError is returned when a required ancestor is
// missing, which indicates a corrupt block index.
func CalcNextRequiredDifficulty(prevNode Node, newBlockTime time.Time, params *chaincfg.Params) (uint32, error) {
	if prevNode == nil {
		return params.PowLimitBits, nil
	}

	if params.IsForkEnabled(prevNode.Height() + 1) {
		return CalcForkRequiredDifficulty(prevNode, newBlockTime, params)
	}
	return calcLegacyRequiredDifficulty(prevNode, newBlockTime, params)
}

// calcLegacyRequiredDifficulty calculates the required difficulty for the
// block after the passed previous block node under the interval retarget
// rules.
func calcLegacyRequiredDifficulty(prevNode Node, newBlockTime time.Time, params *chaincfg.Params) (uint32, error) {
	// Only change once per difficulty adjustment interval.
	interval := params.DifficultyAdjustmentInterval()
	if (prevNode.Height()+1)%interval != 0 {
		if params.ReduceMinDifficulty {
			// Networks that reduce the minimum difficulty allow a block to
			// be mined at the limit once twice the target time per block
			// has elapsed without one.
			if minDifficultyAllowed(prevNode, newBlockTime, params) {
				return params.PowLimitBits, nil
			}

			// Otherwise the difficulty of the last block which did not
			// use the special minimum difficulty rule applies.
			return findPrevNonMinDifficultyBits(prevNode, params), nil
		}

		// For the main network (or any unrecognized networks), simply
		// return the previous block's difficulty requirements.
		return prevNode.Bits(), nil
	}

	// Get the block node at the beginning of the window.
	firstHeight := prevNode.Height() - (interval - 1)
	firstNode := prevNode.Ancestor(firstHeight)
	if firstNode == nil {
		str := fmt.Sprintf("unable to obtain previous retarget block at "+
			"height %d from block %s at height %d", firstHeight,
			prevNode.Hash(), prevNode.Height())
		return 0, AssertError(str)
	}

	return CalcRetargetDifficulty(prevNode, firstNode.Timestamp(), params), nil
}

// CalcRetargetDifficulty calculates the legacy difficulty for the block after
// the provided last block of a retarget interval given the timestamp of the
// first block of that interval.  The actual timespan is limited to a factor of
// four in either direction of the target timespan and the result never exceeds
// the proof-of-work limit.
//
// The previous block's difficulty is returned unchanged when the network does
// not retarget.
func CalcRetargetDifficulty(lastNode Node, firstBlockTime int64, params *chaincfg.Params) uint32 {
	if params.NoRetargeting {
		return lastNode.Bits()
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	targetTimespan := int64(params.TargetTimespan / time.Second)
	actualTimespan := lastNode.Timestamp() - firstBlockTime
	adjustedTimespan := actualTimespan
	if actualTimespan < targetTimespan/4 {
		adjustedTimespan = targetTimespan / 4
	} else if actualTimespan > targetTimespan*4 {
		adjustedTimespan = targetTimespan * 4
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// The result uses integer division which means it will be slightly
	// rounded down.
	oldTarget, _, _ := standalone.DiffBitsToUint256(lastNode.Bits())
	newTarget := oldTarget
	newTarget.MulUint64(uint64(adjustedTimespan))
	newTarget.DivUint64(uint64(targetTimespan))

	// Limit new value to the proof of work limit.
	if newTarget.Gt(params.PowLimit) {
		newTarget.Set(params.PowLimit)
	}

	// Log new target difficulty and return it.  The new target logging is
	// intentionally converting the bits back to a number instead of using
	// newTarget since conversion to the compact representation loses
	// precision.
	newTargetBits := standalone.Uint256ToDiffBits(&newTarget)
	logTarget, _, _ := standalone.DiffBitsToUint256(newTargetBits)
	log.Debugf("Difficulty retarget at block height %d", lastNode.Height()+1)
	log.Debugf("Old target %08x (%064x)", lastNode.Bits(), &oldTarget)
	log.Debugf("New target %08x (%064x)", newTargetBits, &logTarget)
	log.Debugf("Actual timespan %v, adjusted timespan %v, target timespan %v",
		time.Duration(actualTimespan)*time.Second,
		time.Duration(adjustedTimespan)*time.Second, params.TargetTimespan)

	return newTargetBits
}

// CalcForkRequiredDifficulty calculates the required difficulty for the block
// after the passed previous block node under the fork rules, which retarget
// every block from the work done over roughly the last day.
//
// The difficulty resets to the proof-of-work limit at the activation height
// and is held at a value derived from the pre-activation window for the
// transition blocks that follow, until enough post-activation history exists
// for the regular lookback.
func CalcForkRequiredDifficulty(prevNode Node, newBlockTime time.Time, params *chaincfg.Params) (uint32, error) {
	if prevNode == nil {
		return 0, AssertError("fork difficulty requested without a previous " +
			"block")
	}

	// Networks that reduce the minimum difficulty allow a block to be mined
	// at the limit once twice the target time per block has elapsed
	// without one.
	if minDifficultyAllowed(prevNode, newBlockTime, params) {
		return params.PowLimitBits, nil
	}

	nextHeight := prevNode.Height() + 1
	if params.IsForkHeight(nextHeight) {
		log.Debugf("Difficulty reset to the limit at fork height %d",
			nextHeight)
		return params.PowLimitBits, nil
	}

	// Get the last suitable block of the difficulty interval.
	lastNode, err := SuitableBlock(prevNode)
	if err != nil {
		return 0, err
	}

	var nextTarget uint256.Uint256
	if params.IsForkEnabled(nextHeight) &&
		nextHeight-forkTransitionBlocks < params.ForkHeight {

		nextTarget, err = ChangelessTarget(prevNode, params)
		if err != nil {
			return 0, err
		}
	} else {
		// Get the first suitable block of the difficulty interval.
		firstHeight := prevNode.Height() - forkLookback
		firstNode, err := SuitableBlock(prevNode.Ancestor(firstHeight))
		if err != nil {
			return 0, err
		}

		// Compute the target based on time and work done during the
		// interval.
		nextTarget = ComputeTarget(firstNode, lastNode, params)
	}

	if nextTarget.Gt(params.PowLimit) {
		return params.PowLimitBits, nil
	}
	nextBits := standalone.Uint256ToDiffBits(&nextTarget)
	log.Debugf("Fork difficulty at block height %d: %08x", nextHeight,
		nextBits)
	return nextBits, nil
}

// SuitableBlock returns the block with the median timestamp among the provided
// block, its parent, and its grandparent.  Selecting the median as a retarget
// window endpoint prevents a single block with a skewed timestamp from swinging
// the difficulty.
//
// The provided block must have a height of at least two so that both
// ancestors exist.
func SuitableBlock(node Node) (Node, error) {
	if node == nil {
		return nil, AssertError("suitable block requested for a missing block")
	}
	if node.Height() < 2 {
		str := fmt.Sprintf("suitable block requested for block %s at height "+
			"%d which does not have two ancestors", node.Hash(), node.Height())
		return nil, AssertError(str)
	}

	var blocks [3]Node
	blocks[2] = node
	blocks[1] = node.Parent()
	if blocks[1] == nil {
		str := fmt.Sprintf("block %s at height %d has no parent",
			node.Hash(), node.Height())
		return nil, AssertError(str)
	}
	blocks[0] = blocks[1].Parent()
	if blocks[0] == nil {
		str := fmt.Sprintf("block %s at height %d has no grandparent",
			node.Hash(), node.Height())
		return nil, AssertError(str)
	}

	// Sorting network.
	if blocks[0].Timestamp() > blocks[2].Timestamp() {
		blocks[0], blocks[2] = blocks[2], blocks[0]
	}
	if blocks[0].Timestamp() > blocks[1].Timestamp() {
		blocks[0], blocks[1] = blocks[1], blocks[0]
	}
	if blocks[1].Timestamp() > blocks[2].Timestamp() {
		blocks[1], blocks[2] = blocks[2], blocks[1]
	}

	// The candidate is in the middle now.
	return blocks[1], nil
}

// ChangelessTarget returns the target held constant during the fork transition.
// It is derived from the work done over the window that ends just before the
// activation height, divided by the shrink divisor when that work exceeds it.
//
// The window is fixed by the fork height, so the result is the same for every
// block in the transition.
func ChangelessTarget(prevNode Node, params *chaincfg.Params) (uint256.Uint256, error) {
	firstHeight := params.ForkHeight - changelessFirstOffset
	lastHeight := params.ForkHeight - changelessLastOffset
	firstNode := prevNode.Ancestor(firstHeight)
	lastNode := prevNode.Ancestor(lastHeight)
	if firstNode == nil || lastNode == nil {
		str := fmt.Sprintf("unable to obtain pre-activation window blocks at "+
			"heights %d and %d from block %s at height %d", firstHeight,
			lastHeight, prevNode.Hash(), prevNode.Height())
		return uint256.Uint256{}, AssertError(str)
	}

	work := lastNode.WorkSum()
	firstWork := firstNode.WorkSum()
	work.Sub(&firstWork)
	work.MulUint64(uint64(targetSpacing(params)))

	// Timestamps in the window are not required to increase, so a window
	// that did not move forward in time is treated as lasting one second.
	actualTimespan := lastNode.Timestamp() - firstNode.Timestamp()
	if actualTimespan < 1 {
		actualTimespan = 1
	}
	work.DivUint64(uint64(actualTimespan))

	if params.ShrinkDiff > 0 && work.GtUint64(params.ShrinkDiff) {
		work.DivUint64(params.ShrinkDiff)
	}

	return standalone.WorkToTarget(&work), nil
}

// ComputeTarget returns the target that produces the work per block observed
// between the two provided blocks.  The timespan between them is bounded to
// [72, 288] times the target time per block, which limits each adjustment to
// a factor of two in either direction of the nominal day long window.
func ComputeTarget(firstNode, lastNode Node, params *chaincfg.Params) uint256.Uint256 {
	// From the total work done and the time it took to produce that much
	// work, deduce how much work is expected to be produced in the target
	// time between blocks.
	spacing := targetSpacing(params)
	work := lastNode.WorkSum()
	firstWork := firstNode.WorkSum()
	work.Sub(&firstWork)
	work.MulUint64(uint64(spacing))

	actualTimespan := lastNode.Timestamp() - firstNode.Timestamp()
	if actualTimespan > maxForkTimespanBlocks*spacing {
		actualTimespan = maxForkTimespanBlocks * spacing
	} else if actualTimespan < minForkTimespanBlocks*spacing {
		actualTimespan = minForkTimespanBlocks * spacing
	}
	work.DivUint64(uint64(actualTimespan))

	return standalone.WorkToTarget(&work)
}

// CheckBlockDifficulty ensures the provided block claims the difficulty
// required after the given previous block and that its hash satisfies that
// difficulty.  Rule violations are reported with the kinds
// ErrUnexpectedDifficulty from this package or standalone.ErrHighHash, while an
// AssertError indicates a corrupt block index.
func CheckBlockDifficulty(prevNode Node, hash *chainhash.Hash, bits uint32, timestamp time.Time, params *chaincfg.Params) error {
	expectedBits, err := CalcNextRequiredDifficulty(prevNode, timestamp, params)
	if err != nil {
		return err
	}
	if bits != expectedBits {
		str := fmt.Sprintf("block difficulty of %08x is not the expected "+
			"value of %08x", bits, expectedBits)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	err = standalone.CheckProofOfWork(hash, bits, params.PowLimit)
	if err != nil {
		var rErr standalone.RuleError
		if errors.As(err, &rErr) && errors.Is(err,
			standalone.ErrUnexpectedDifficulty) {

			return ruleError(ErrUnexpectedDifficulty, rErr.Description)
		}
		return err
	}
	return nil
}
