// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/decred/dcrd/wire"
)

const (
	// maxSignatureLen is the largest signature accepted when decoding a
	// stored record.  DER encoded secp256k1 signatures are at most 72
	// bytes.
	maxSignatureLen = 72

	// sigHashPayloadLen is the length of the serialized height and hash
	// the signature digest commits to.
	sigHashPayloadLen = 4 + chainhash.HashSize
)

// Checkpoint is a dynamic checkpoint: a block height and hash pair signed by
// the checkpoint key so nodes can refuse reorganizations below it.
type Checkpoint struct {
	Height    int64
	Hash      chainhash.Hash
	Signature []byte
}

// New returns an unsigned checkpoint for the given height and block hash.
func New(height int64, hash *chainhash.Hash) *Checkpoint {
	return &Checkpoint{Height: height, Hash: *hash}
}

// checkHeight returns ErrInvalidHeight when the height can't be committed to
// by the signature digest.
func checkHeight(height int64) error {
	if height < 0 || height > math.MaxInt32 {
		str := fmt.Sprintf("checkpoint height %d is out of range [0, %d]",
			height, math.MaxInt32)
		return contextError(ErrInvalidHeight, str)
	}
	return nil
}

// SigHash returns the digest the checkpoint signature commits to, which is the
// double SHA-256 of the height as a little-endian int32 followed by the block
// hash.
func (c *Checkpoint) SigHash() chainhash.Hash {
	var buf [sigHashPayloadLen]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(int32(c.Height)))
	copy(buf[4:], c.Hash[:])
	return chainhash.DoubleHashH(buf[:])
}

// Sign signs the checkpoint with the provided private key and stores the DER
// encoded signature in the checkpoint.
func (c *Checkpoint) Sign(key *secp256k1.PrivateKey) error {
	if key == nil || key.Key.IsZero() {
		return contextError(ErrInvalidKey, "checkpoint signing key is "+
			"missing or zero")
	}
	if err := checkHeight(c.Height); err != nil {
		return err
	}

	sigHash := c.SigHash()
	c.Signature = ecdsa.Sign(key, sigHash[:]).Serialize()
	log.Debugf("Signed checkpoint %d (%s)", c.Height, c.Hash)
	return nil
}

// CheckSignature returns whether the checkpoint carries a valid signature by
// the provided public key.  It never panics and reports any failure as false.
func (c *Checkpoint) CheckSignature(pubKey *secp256k1.PublicKey) bool {
	if pubKey == nil {
		log.Debugf("No public key to verify checkpoint %d against",
			c.Height)
		return false
	}
	if checkHeight(c.Height) != nil {
		log.Debugf("Checkpoint height %d is out of range", c.Height)
		return false
	}

	sig, err := ecdsa.ParseDERSignature(c.Signature)
	if err != nil {
		log.Debugf("Malformed signature on checkpoint %d: %v", c.Height,
			err)
		return false
	}
	sigHash := c.SigHash()
	if !sig.Verify(sigHash[:], pubKey) {
		log.Debugf("Signature verification failed for checkpoint %d (%s)",
			c.Height, c.Hash)
		return false
	}
	return true
}

// String returns the checkpoint in a human-readable form.
func (c Checkpoint) String() string {
	return fmt.Sprintf("%d:%s", c.Height, c.Hash)
}

// jsonCheckpoint is the JSON representation of a checkpoint.  The hash is in
// the byte-reversed display order used for block hashes.
type jsonCheckpoint struct {
	Height int64  `json:"height"`
	Hash   string `json:"hash"`
	Sig    string `json:"sig"`
}

// MarshalJSON implements json.Marshaler.
func (c Checkpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonCheckpoint{
		Height: c.Height,
		Hash:   c.Hash.String(),
		Sig:    hex.EncodeToString(c.Signature),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Checkpoint) UnmarshalJSON(data []byte) error {
	var jc jsonCheckpoint
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	if err := checkHeight(jc.Height); err != nil {
		return err
	}
	if len(jc.Hash) != chainhash.MaxHashStringSize {
		return fmt.Errorf("checkpoint hash %q must be %d hex characters",
			jc.Hash, chainhash.MaxHashStringSize)
	}
	hash, err := chainhash.NewHashFromStr(jc.Hash)
	if err != nil {
		return fmt.Errorf("invalid checkpoint hash: %w", err)
	}
	sig, err := hex.DecodeString(jc.Sig)
	if err != nil {
		return fmt.Errorf("invalid checkpoint signature: %w", err)
	}

	c.Height = jc.Height
	c.Hash = *hash
	c.Signature = sig
	return nil
}

// serializeSize returns the number of bytes needed to serialize the record.
func (c *Checkpoint) serializeSize() int {
	return serializeSizeVLQ(uint64(c.Height)) + chainhash.HashSize +
		wire.VarIntSerializeSize(uint64(len(c.Signature))) +
		len(c.Signature)
}

// serialize returns the database record for the checkpoint:
//
//	<height VLQ><block hash (32 bytes)><sig length CompactSize><sig>
func (c *Checkpoint) serialize() ([]byte, error) {
	if err := checkHeight(c.Height); err != nil {
		return nil, err
	}

	serialized := make([]byte, serializeSizeVLQ(uint64(c.Height)),
		c.serializeSize())
	putVLQ(serialized, uint64(c.Height))
	serialized = append(serialized, c.Hash[:]...)
	buf := bytes.NewBuffer(serialized)
	if err := wire.WriteVarBytes(buf, 0, c.Signature); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserialize decodes a database record produced by serialize.  Any
// truncation, trailing data or out of range height is ErrCorruptCheckpoint.
func deserialize(serialized []byte) (*Checkpoint, error) {
	corrupt := func(format string, args ...interface{}) error {
		return contextError(ErrCorruptCheckpoint, fmt.Sprintf(format,
			args...))
	}

	height, offset := deserializeVLQ(serialized)
	if offset == 0 {
		return nil, corrupt("unexpected end of data reading height")
	}
	if height > math.MaxInt32 {
		return nil, corrupt("height %d is out of range", height)
	}
	if len(serialized[offset:]) < chainhash.HashSize {
		return nil, corrupt("unexpected end of data reading hash")
	}

	var cp Checkpoint
	cp.Height = int64(height)
	copy(cp.Hash[:], serialized[offset:offset+chainhash.HashSize])
	offset += chainhash.HashSize

	r := bytes.NewReader(serialized[offset:])
	sig, err := wire.ReadVarBytes(r, 0, maxSignatureLen, "signature")
	if err != nil {
		return nil, corrupt("unable to read signature: %v", err)
	}
	if r.Len() != 0 {
		return nil, corrupt("%d unexpected trailing bytes", r.Len())
	}
	if len(sig) > 0 {
		cp.Signature = sig
	}
	return &cp, nil
}
