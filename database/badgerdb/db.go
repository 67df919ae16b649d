// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package badgerdb

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/wbtcsuite/wbtcd/database"
)

// convertErr converts the passed badger error into a database error with an
// equivalent error kind.
func convertErr(desc string, badgerErr error) database.Error {
	kind := database.ErrDriverSpecific
	switch {
	case errors.Is(badgerErr, badger.ErrKeyNotFound):
		kind = database.ErrValueNotFound
	case errors.Is(badgerErr, badger.ErrDBClosed):
		kind = database.ErrDbNotOpen
	case errors.Is(badgerErr, badger.ErrEmptyKey):
		kind = database.ErrKeyRequired
	}
	return database.MakeError(kind, desc, badgerErr)
}

func errNotOpen() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open",
		nil)
}

type db struct {
	closeLock sync.RWMutex
	closed    bool
	bdb       *badger.DB
}

// Enforce db implements the database.DB interface.
var _ database.DB = (*db)(nil)

func (db *db) Type() string {
	return dbType
}

func (db *db) Get(key []byte) ([]byte, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	var value []byte
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, convertErr("failed to fetch value", err)
	}
	return value, nil
}

func (db *db) Has(key []byte) (bool, error) {
	_, err := db.Get(key)
	switch {
	case errors.Is(err, database.ErrValueNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
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

	// Badger retains the slices until the transaction commits.
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	err := db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(k, v)
	})
	if err != nil {
		return convertErr("failed to store value", err)
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

	err := db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return convertErr("failed to delete value", err)
	}
	return nil
}

// NewCursor returns a cursor backed by a read-only transaction, so it sees a
// consistent snapshot of the database.  The transaction is discarded when the
// cursor is closed.
func (db *db) NewCursor() (database.Cursor, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	txn := db.bdb.NewTransaction(false)
	return &cursor{txn: txn, iter: txn.NewIterator(badger.DefaultIteratorOptions)}, nil
}

func (db *db) Close() error {
	db.closeLock.Lock()
	defer db.closeLock.Unlock()
	if db.closed {
		return errNotOpen()
	}
	db.closed = true

	if err := db.bdb.Close(); err != nil {
		return convertErr("failed to close database", err)
	}
	log.Debugf("Closed database")
	return nil
}

type cursor struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	started bool
	value   []byte
	err     error
	closed  bool
}

// load caches the value of the current item and reports whether the
// iterator is positioned at a valid item.
func (c *cursor) load() bool {
	c.value = nil
	if !c.iter.Valid() {
		return false
	}
	value, err := c.iter.Item().ValueCopy(nil)
	if err != nil {
		c.err = convertErr("failed to read value", err)
		return false
	}
	c.value = value
	return true
}

func (c *cursor) Seek(key []byte) bool {
	if c.closed || c.err != nil {
		return false
	}
	c.started = true
	c.iter.Seek(key)
	return c.load()
}

func (c *cursor) Next() bool {
	if c.closed || c.err != nil {
		return false
	}
	if !c.started {
		c.started = true
		c.iter.Rewind()
		return c.load()
	}
	if !c.iter.Valid() {
		return false
	}
	c.iter.Next()
	return c.load()
}

func (c *cursor) Key() []byte {
	if c.closed || !c.iter.Valid() {
		return nil
	}
	return c.iter.Item().Key()
}

func (c *cursor) Value() []byte {
	return c.value
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.iter.Close()
	c.txn.Discard()
	return nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// openDB opens the database at the provided path.  database.ErrDbDoesNotExist
// is returned if the database doesn't exist and the create flag is not set.
func openDB(dbPath string, create bool) (database.DB, error) {
	dbExists := fileExists(dbPath)
	if !create && !dbExists {
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}
	if create && dbExists {
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger{}).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING).
		WithSyncWrites(true)
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, convertErr("failed to open database", err)
	}

	log.Debugf("Opened database %s", dbPath)
	return &db{bdb: bdb}, nil
}
