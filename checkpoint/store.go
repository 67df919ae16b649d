// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/wbtcsuite/wbtcd/database"
)

// checkpointKeyTag prefixes every checkpoint record so the keyspace can be
// shared with other data.
const checkpointKeyTag = 'c'

// checkpointKeyLen is the length of a checkpoint record key: the tag followed
// by the height as a big-endian uint32 so keys sort by height.
const checkpointKeyLen = 1 + 4

// checkpointKey returns the database key for the checkpoint at the given
// height.  The height must already have been range checked.
func checkpointKey(height int64) []byte {
	var key [checkpointKeyLen]byte
	key[0] = checkpointKeyTag
	binary.BigEndian.PutUint32(key[1:], uint32(height))
	return key[:]
}

// Store persists dynamic checkpoints in a database.  It holds no state of its
// own beyond the database handle, so it is safe for concurrent use to the
// extent the database is.  Concurrent writes to the same height must be
// serialized by the caller.
type Store struct {
	db database.DB
}

// NewStore returns a checkpoint store backed by the provided database.
func NewStore(db database.DB) *Store {
	return &Store{db: db}
}

// Write stores the checkpoint, replacing any existing checkpoint at the same
// height.
func (s *Store) Write(cp *Checkpoint) error {
	serialized, err := cp.serialize()
	if err != nil {
		return err
	}
	if err := s.db.Put(checkpointKey(cp.Height), serialized); err != nil {
		str := fmt.Sprintf("failed to store checkpoint %d", cp.Height)
		return storageError(str, err)
	}

	log.Debugf("Stored checkpoint %v", cp)
	return nil
}

// Read returns the checkpoint stored at the given height.  It returns nil and
// no error when there is none.
func (s *Store) Read(height int64) (*Checkpoint, error) {
	if err := checkHeight(height); err != nil {
		return nil, err
	}

	serialized, err := s.db.Get(checkpointKey(height))
	if errors.Is(err, database.ErrValueNotFound) {
		return nil, nil
	}
	if err != nil {
		str := fmt.Sprintf("failed to read checkpoint %d", height)
		return nil, storageError(str, err)
	}

	cp, err := deserialize(serialized)
	if err != nil {
		return nil, err
	}
	if cp.Height != height {
		str := fmt.Sprintf("checkpoint stored under height %d claims "+
			"height %d", height, cp.Height)
		return nil, contextError(ErrCorruptCheckpoint, str)
	}
	return cp, nil
}

// Exists returns whether a checkpoint is stored at the given height.
func (s *Store) Exists(height int64) (bool, error) {
	if err := checkHeight(height); err != nil {
		return false, err
	}

	exists, err := s.db.Has(checkpointKey(height))
	if err != nil {
		str := fmt.Sprintf("failed to look up checkpoint %d", height)
		return false, storageError(str, err)
	}
	return exists, nil
}

// LoadAll returns every stored checkpoint in ascending height order.  The scan
// starts at the lowest checkpoint key and stops at the first key outside the
// checkpoint keyspace.  Keys that carry the checkpoint tag but not the length
// of a checkpoint key belong to other subsystems and are skipped.  A checkpoint
// record that fails to decode aborts the whole scan with ErrCorruptCheckpoint.
func (s *Store) LoadAll() ([]Checkpoint, error) {
	cursor, err := s.db.NewCursor()
	if err != nil {
		return nil, storageError("failed to open checkpoint cursor", err)
	}
	defer cursor.Close()

	checkpoints := make([]Checkpoint, 0)
	for ok := cursor.Seek(checkpointKey(0)); ok; ok = cursor.Next() {
		key := cursor.Key()
		if len(key) == 0 || key[0] != checkpointKeyTag {
			break
		}
		if len(key) != checkpointKeyLen {
			// Other subsystems sharing the keyspace may use keys that
			// start with the tag, such as "chainstate".
			log.Tracef("Skipping foreign key %x in checkpoint keyspace",
				key)
			continue
		}

		cp, err := deserialize(cursor.Value())
		if err != nil {
			return nil, err
		}
		keyHeight := int64(binary.BigEndian.Uint32(key[1:]))
		if cp.Height != keyHeight {
			str := fmt.Sprintf("checkpoint stored under height %d "+
				"claims height %d", keyHeight, cp.Height)
			return nil, contextError(ErrCorruptCheckpoint, str)
		}
		checkpoints = append(checkpoints, *cp)
	}
	if err := cursor.Err(); err != nil {
		return nil, storageError("failed to scan checkpoints", err)
	}

	log.Tracef("Loaded %d dynamic checkpoints", len(checkpoints))
	return checkpoints, nil
}
