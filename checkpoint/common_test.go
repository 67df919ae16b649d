// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/wbtcsuite/wbtcd/blockchain"
	"github.com/wbtcsuite/wbtcd/chaincfg"
)

// fakeBlockHash returns a deterministic hash for a block at the provided height
// on the branch identified by the provided tag.
func fakeBlockHash(tag byte, height int64) chainhash.Hash {
	var b [9]byte
	b[0] = tag
	binary.LittleEndian.PutUint64(b[1:], uint64(height))
	return chainhash.DoubleHashH(b[:])
}

// buildChain returns a block index holding a regression test network chain
// with blocks at heights 0 through tipHeight on the branch identified by tag.
func buildChain(t *testing.T, tag byte, tipHeight int64) *blockchain.BlockIndex {
	t.Helper()

	bits := chaincfg.RegNetParams().PowLimitBits
	bi := blockchain.NewBlockIndex()
	var parentHash *chainhash.Hash
	for height := int64(0); height <= tipHeight; height++ {
		hash := fakeBlockHash(tag, height)
		timestamp := time.Unix(1296688602+height*150, 0)
		_, err := bi.AddBlock(&hash, parentHash, bits, timestamp)
		if err != nil {
			t.Fatalf("unable to add block at height %d: %v", height, err)
		}
		parentHash = &hash
	}
	return bi
}

// regNetKey returns the regression test network checkpoint signing key.
func regNetKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()

	keyBytes, err := hex.DecodeString(chaincfg.RegNetPrivKey)
	if err != nil {
		t.Fatalf("unable to decode regnet key: %v", err)
	}
	return secp256k1.PrivKeyFromBytes(keyBytes)
}

// otherKey returns a deterministic key unrelated to any network.
func otherKey() *secp256k1.PrivateKey {
	var keyBytes [32]byte
	keyBytes[31] = 0x2a
	return secp256k1.PrivKeyFromBytes(keyBytes[:])
}

// signedCheckpoint returns a checkpoint for the block at the provided height
// on the branch identified by tag, signed with the provided key.
func signedCheckpoint(t *testing.T, tag byte, height int64, key *secp256k1.PrivateKey) *Checkpoint {
	t.Helper()

	hash := fakeBlockHash(tag, height)
	cp := New(height, &hash)
	if err := cp.Sign(key); err != nil {
		t.Fatalf("unable to sign checkpoint %d: %v", height, err)
	}
	return cp
}
