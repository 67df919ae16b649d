// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memdb

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/wbtcsuite/wbtcd/database"
)

// initialCapacity is the initial size of the backing buffer in bytes.
const initialCapacity = 4096

// db wraps a goleveldb memory database.  The memory database is itself safe
// for concurrent access, the lock only guards the closed state.
type db struct {
	closeLock sync.RWMutex
	closed    bool
	mem       *memdb.DB
}

// Enforce db implements the database.DB interface.
var _ database.DB = (*db)(nil)

// New returns a new empty in-memory database.
func New() database.DB {
	return &db{mem: memdb.New(comparer.DefaultComparer, initialCapacity)}
}

func (db *db) Type() string {
	return dbType
}

func errNotOpen() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open",
		nil)
}

func (db *db) Get(key []byte) ([]byte, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	value, err := db.mem.Get(key)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, database.MakeError(database.ErrValueNotFound,
			"key not found", nil)
	}
	if err != nil {
		return nil, database.MakeError(database.ErrDriverSpecific,
			"failed to fetch value", err)
	}

	// The returned slice references the internal buffer.
	return append([]byte(nil), value...), nil
}

func (db *db) Has(key []byte) (bool, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return false, errNotOpen()
	}
	return db.mem.Contains(key), nil
}

func (db *db) Put(key, value []byte) error {
	if len(key) == 0 {
		return database.MakeError(database.ErrKeyRequired,
			"put requires a key", nil)
	}

	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return errNotOpen()
	}
	if err := db.mem.Put(key, value); err != nil {
		return database.MakeError(database.ErrDriverSpecific,
			"failed to store value", err)
	}
	return nil
}

func (db *db) Delete(key []byte) error {
	if len(key) == 0 {
		return database.MakeError(database.ErrKeyRequired,
			"delete requires a key", nil)
	}

	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return errNotOpen()
	}
	err := db.mem.Delete(key)
	if err != nil && !errors.Is(err, memdb.ErrNotFound) {
		return database.MakeError(database.ErrDriverSpecific,
			"failed to delete value", err)
	}
	return nil
}

func (db *db) NewCursor() (database.Cursor, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}
	return &cursor{iter: db.mem.NewIterator(nil)}, nil
}

func (db *db) Close() error {
	db.closeLock.Lock()
	defer db.closeLock.Unlock()
	if db.closed {
		return errNotOpen()
	}
	db.closed = true
	db.mem.Reset()
	return nil
}

// cursor adapts a goleveldb iterator to the database.Cursor interface.
type cursor struct {
	iter     iterator.Iterator
	released bool
}

func (c *cursor) Seek(key []byte) bool {
	return c.iter.Seek(key)
}

func (c *cursor) Next() bool {
	return c.iter.Next()
}

func (c *cursor) Key() []byte {
	return c.iter.Key()
}

func (c *cursor) Value() []byte {
	return c.iter.Value()
}

func (c *cursor) Err() error {
	return c.iter.Error()
}

func (c *cursor) Close() error {
	if !c.released {
		c.iter.Release()
		c.released = true
	}
	return nil
}
