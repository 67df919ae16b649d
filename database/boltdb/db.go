// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package boltdb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wbtcsuite/wbtcd/database"
	bolt "go.etcd.io/bbolt"
)

const (
	// dbFileName is the name of the bbolt file inside the database
	// directory.
	dbFileName = "data.db"

	// openTimeout bounds how long to wait for the file lock held by another
	// process.
	openTimeout = 5 * time.Second
)

// dataBucket is the name of the bucket holding every key.
var dataBucket = []byte("data")

// convertErr converts the passed bbolt error into a database error with an
// equivalent error kind.
func convertErr(desc string, boltErr error) database.Error {
	kind := database.ErrDriverSpecific
	switch {
	case errors.Is(boltErr, bolt.ErrDatabaseNotOpen):
		kind = database.ErrDbNotOpen
	case errors.Is(boltErr, bolt.ErrKeyRequired):
		kind = database.ErrKeyRequired
	}
	return database.MakeError(kind, desc, boltErr)
}

func errNotOpen() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open",
		nil)
}

type db struct {
	closeLock sync.RWMutex
	closed    bool
	bdb       *bolt.DB

	// cursors tracks the open cursors.  Each holds a read transaction that
	// bolt.DB.Close waits for, so they are released before closing.
	cursorsMtx sync.Mutex
	cursors    map[*cursor]struct{}
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
	var found bool
	err := db.bdb.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(dataBucket).Get(key)
		if v == nil {
			return nil
		}
		// The slice is only valid for the life of the transaction.
		found = true
		value = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, convertErr("failed to fetch value", err)
	}
	if !found {
		return nil, database.MakeError(database.ErrValueNotFound,
			"key not found", nil)
	}
	return value, nil
}

func (db *db) Has(key []byte) (bool, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return false, errNotOpen()
	}

	var has bool
	err := db.bdb.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(dataBucket).Get(key) != nil
		return nil
	})
	if err != nil {
		return false, convertErr("failed to check key", err)
	}
	return has, nil
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

	// bbolt reports a stored empty value as nil, which would be
	// indistinguishable from a missing key.
	if value == nil {
		value = []byte{}
	}
	err := db.bdb.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dataBucket).Put(key, value)
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

	err := db.bdb.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(dataBucket).Delete(key)
	})
	if err != nil {
		return convertErr("failed to delete value", err)
	}
	return nil
}

// NewCursor returns a cursor backed by a read-only transaction.  Writes from
// the same goroutine must not be issued while the cursor is open since bbolt
// may need to remap the file.  Closing the database releases the cursor.
func (db *db) NewCursor() (database.Cursor, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	tx, err := db.bdb.Begin(false)
	if err != nil {
		return nil, convertErr("failed to begin read transaction", err)
	}
	c := &cursor{db: db, tx: tx, c: tx.Bucket(dataBucket).Cursor()}
	db.cursorsMtx.Lock()
	db.cursors[c] = struct{}{}
	db.cursorsMtx.Unlock()
	return c, nil
}

func (db *db) Close() error {
	db.closeLock.Lock()
	defer db.closeLock.Unlock()
	if db.closed {
		return errNotOpen()
	}
	db.closed = true

	// Release cursors the caller left open.
	db.cursorsMtx.Lock()
	for c := range db.cursors {
		if err := c.release(); err != nil {
			log.Warnf("Failed to release cursor: %v", err)
		}
	}
	db.cursorsMtx.Unlock()

	if err := db.bdb.Close(); err != nil {
		return convertErr("failed to close database", err)
	}
	log.Debugf("Closed database")
	return nil
}

type cursor struct {
	db      *db
	tx      *bolt.Tx
	c       *bolt.Cursor
	started bool
	key     []byte
	value   []byte
	closed  bool
}

func (c *cursor) set(k, v []byte) bool {
	c.key, c.value = k, v
	return k != nil
}

func (c *cursor) Seek(key []byte) bool {
	if c.closed {
		return false
	}
	c.started = true
	return c.set(c.c.Seek(key))
}

func (c *cursor) Next() bool {
	if c.closed {
		return false
	}
	if !c.started {
		c.started = true
		return c.set(c.c.First())
	}
	if c.key == nil {
		return false
	}
	return c.set(c.c.Next())
}

func (c *cursor) Key() []byte   { return c.key }
func (c *cursor) Value() []byte { return c.value }
func (c *cursor) Err() error    { return nil }

// release rolls back the read transaction of the cursor.  It must be called
// with the cursors mutex held.
func (c *cursor) release() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.key, c.value = nil, nil
	delete(c.db.cursors, c)
	if err := c.tx.Rollback(); err != nil {
		return convertErr("failed to release read transaction", err)
	}
	return nil
}

func (c *cursor) Close() error {
	c.db.cursorsMtx.Lock()
	defer c.db.cursorsMtx.Unlock()
	return c.release()
}

// openDB opens the database at the provided path.  database.ErrDbDoesNotExist
// is returned if the database doesn't exist and the create flag is not set.
func openDB(dbPath string, create bool) (database.DB, error) {
	dbFile := filepath.Join(dbPath, dbFileName)
	_, err := os.Stat(dbFile)
	dbExists := !os.IsNotExist(err)
	if !create && !dbExists {
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}
	if create && dbExists {
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	}

	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, convertErr("failed to create database directory", err)
	}
	bdb, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, convertErr("failed to open database", err)
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(dataBucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, convertErr("failed to create data bucket", err)
	}

	log.Debugf("Opened database %s", dbPath)
	return &db{bdb: bdb, cursors: make(map[*cursor]struct{})}, nil
}
