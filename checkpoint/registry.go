// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/wbtcsuite/wbtcd/blockchain"
	"github.com/wbtcsuite/wbtcd/chaincfg"
)

// LastCheckpoint returns the block of the most recent static checkpoint that
// the view knows about.  It returns nil when the network has no checkpoints or
// none of them are known, such as on an unsynced or alternate chain.
//
// The view must be safe for concurrent access or the caller must hold the
// chain lock.
func LastCheckpoint(params *chaincfg.Params, view blockchain.ChainView) blockchain.Node {
	checkpoints := params.Checkpoints
	for i := len(checkpoints) - 1; i >= 0; i-- {
		if node := view.LookupNode(checkpoints[i].Hash); node != nil {
			return node
		}
	}
	return nil
}

// Registry combines the static checkpoints of a network with the dynamic
// checkpoints persisted in a store.  It holds no mutable state.
type Registry struct {
	params *chaincfg.Params
	store  *Store
}

// NewRegistry returns a registry for the given network backed by the store.
func NewRegistry(params *chaincfg.Params, store *Store) *Registry {
	return &Registry{params: params, store: store}
}

// Store returns the store backing the registry.
func (r *Registry) Store() *Store {
	return r.store
}

// LastCheckpoint returns the block of the most recent static checkpoint that
// the view knows about.  See the package level LastCheckpoint.
func (r *Registry) LastCheckpoint(view blockchain.ChainView) blockchain.Node {
	return LastCheckpoint(r.params, view)
}

// Checkpoint returns the dynamic checkpoint stored at the given height.
// ErrCheckpointNotFound is returned when there is none.
func (r *Registry) Checkpoint(height int64) (*Checkpoint, error) {
	cp, err := r.store.Read(height)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		str := fmt.Sprintf("no dynamic checkpoint at height %d", height)
		return nil, contextError(ErrCheckpointNotFound, str)
	}
	return cp, nil
}

// CheckpointsAfter returns every stored dynamic checkpoint with a height
// strictly greater than the provided height, in ascending height order.  An
// empty result with a nil error means there are no candidates.
//
// The returned checkpoints are not verified.  Use VerifiedCheckpointsAfter to
// only obtain the ones signed by the checkpoint key.
func (r *Registry) CheckpointsAfter(height int64) ([]Checkpoint, error) {
	all, err := r.store.LoadAll()
	if err != nil {
		return nil, err
	}

	// LoadAll is ascending, so the result is the tail after the first
	// checkpoint above the height.
	for i := range all {
		if all[i].Height > height {
			return all[i:], nil
		}
	}
	return all[:0], nil
}

// VerifiedCheckpointsAfter is like CheckpointsAfter but drops any checkpoint
// whose signature does not verify against the provided public key.
func (r *Registry) VerifiedCheckpointsAfter(height int64, pubKey *secp256k1.PublicKey) ([]Checkpoint, error) {
	candidates, err := r.CheckpointsAfter(height)
	if err != nil {
		return nil, err
	}

	verified := candidates[:0]
	for _, cp := range candidates {
		if !cp.CheckSignature(pubKey) {
			log.Warnf("Ignoring dynamic checkpoint %v with an invalid "+
				"signature", cp)
			continue
		}
		verified = append(verified, cp)
	}
	return verified, nil
}

// AddCheckpoint verifies the checkpoint signature against the provided public
// key and stores it, replacing any checkpoint at the same height.
func (r *Registry) AddCheckpoint(cp *Checkpoint, pubKey *secp256k1.PublicKey) error {
	if !cp.CheckSignature(pubKey) {
		str := fmt.Sprintf("checkpoint %v is not signed by the "+
			"checkpoint key", cp)
		return ruleError(ErrBadCheckpointSignature, str)
	}
	if err := r.store.Write(cp); err != nil {
		return err
	}

	log.Infof("Added dynamic checkpoint %v", cp)
	return nil
}

// lastTrustedHeight returns the height of the most recent checkpoint, static
// or verified dynamic, that the view knows about.  It returns -1 when there is
// none.
func (r *Registry) lastTrustedHeight(view blockchain.ChainView) (int64, error) {
	height := int64(-1)
	if node := r.LastCheckpoint(view); node != nil {
		height = node.Height()
	}

	pubKey, err := r.params.CheckpointPublicKey()
	if err != nil {
		// Without a key no dynamic checkpoint can be trusted.
		log.Debugf("No usable checkpoint public key: %v", err)
		return height, nil
	}
	dynamic, err := r.VerifiedCheckpointsAfter(height, pubKey)
	if err != nil {
		return 0, err
	}
	for i := len(dynamic) - 1; i >= 0; i-- {
		cp := &dynamic[i]
		node := view.LookupNode(&cp.Hash)
		if node != nil && node.Height() == cp.Height {
			height = cp.Height
			break
		}
	}
	return height, nil
}

// CheckForkPoint returns ErrForkTooOld when a reorganization whose fork point
// is at the provided height would disconnect the block of the most recent
// static or verified dynamic checkpoint known to the view.
//
// The store is read while checking, so the caller should not hold the chain
// lock across this call unless the view is safe for concurrent access.
func (r *Registry) CheckForkPoint(view blockchain.ChainView, forkHeight int64) error {
	checkpointHeight, err := r.lastTrustedHeight(view)
	if err != nil {
		return err
	}
	if forkHeight < checkpointHeight {
		str := fmt.Sprintf("reorganization forking at height %d would "+
			"disconnect the checkpoint at height %d", forkHeight,
			checkpointHeight)
		return ruleError(ErrForkTooOld, str)
	}
	return nil
}
