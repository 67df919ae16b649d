// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2020 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/wbtcsuite/wbtcd/database"
)

// syncWrites makes every write durable before it returns.
var syncWrites = &opt.WriteOptions{Sync: true}

// convertErr converts the passed leveldb error into a database error with an
// equivalent error kind and the passed description.  It also sets the passed
// error as the underlying error.
func convertErr(desc string, ldbErr error) database.Error {
	kind := database.ErrDriverSpecific
	switch {
	case errors.Is(ldbErr, leveldb.ErrNotFound):
		kind = database.ErrValueNotFound
	case errors.Is(ldbErr, leveldb.ErrClosed):
		kind = database.ErrDbNotOpen
	}

	return database.MakeError(kind, desc, ldbErr)
}

// db represents a collection of namespaces which are persisted and implements
// the database.DB interface.  All database access is performed through
// leveldb which is safe for concurrent access.
type db struct {
	// closeLock protects the closed flag so that operations that are in
	// flight complete before the database is closed.
	closeLock sync.RWMutex
	closed    bool
	ldb       *leveldb.DB
}

// Enforce db implements the database.DB interface.
var _ database.DB = (*db)(nil)

// Type returns the database driver type the current database instance was
// created with.
//
// This function is part of the database.DB interface implementation.
func (db *db) Type() string {
	return dbType
}

func errNotOpen() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open",
		nil)
}

// Get returns the value for the given key.
//
// This function is part of the database.DB interface implementation.
func (db *db) Get(key []byte) ([]byte, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	value, err := db.ldb.Get(key, nil)
	if err != nil {
		return nil, convertErr("failed to fetch value", err)
	}
	return value, nil
}

// Has returns whether or not the key exists.
//
// This function is part of the database.DB interface implementation.
func (db *db) Has(key []byte) (bool, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return false, errNotOpen()
	}

	has, err := db.ldb.Has(key, nil)
	if err != nil {
		return false, convertErr("failed to check key", err)
	}
	return has, nil
}

// Put stores the key/value pair.
//
// This function is part of the database.DB interface implementation.
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

	if err := db.ldb.Put(key, value, syncWrites); err != nil {
		return convertErr("failed to store value", err)
	}
	return nil
}

// Delete removes the key.
//
// This function is part of the database.DB interface implementation.
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

	if err := db.ldb.Delete(key, syncWrites); err != nil {
		return convertErr("failed to delete value", err)
	}
	return nil
}

// NewCursor returns a cursor over a consistent snapshot of the database.
//
// This function is part of the database.DB interface implementation.
func (db *db) NewCursor() (database.Cursor, error) {
	db.closeLock.RLock()
	defer db.closeLock.RUnlock()
	if db.closed {
		return nil, errNotOpen()
	}

	return &cursor{iter: db.ldb.NewIterator(nil, nil)}, nil
}

// Close cleanly shuts down the database and syncs all data.
//
// This function is part of the database.DB interface implementation.
func (db *db) Close() error {
	// Since all transactions have a read lock on this mutex, this will
	// cause Close to wait for all readers to complete.
	db.closeLock.Lock()
	defer db.closeLock.Unlock()

	if db.closed {
		return errNotOpen()
	}
	db.closed = true

	if err := db.ldb.Close(); err != nil {
		return convertErr("failed to close database", err)
	}
	log.Debugf("Closed database")
	return nil
}

// cursor adapts a leveldb iterator to the database.Cursor interface.
type cursor struct {
	iter     iterator.Iterator
	released bool
}

func (c *cursor) Seek(key []byte) bool { return c.iter.Seek(key) }
func (c *cursor) Next() bool           { return c.iter.Next() }
func (c *cursor) Key() []byte          { return c.iter.Key() }
func (c *cursor) Value() []byte        { return c.iter.Value() }

func (c *cursor) Err() error {
	if err := c.iter.Error(); err != nil {
		return convertErr("cursor failed", err)
	}
	return nil
}

func (c *cursor) Close() error {
	if !c.released {
		c.iter.Release()
		c.released = true
	}
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
	// Error if the database doesn't exist and the create flag is not set.
	dbExists := fileExists(dbPath)
	if !create && !dbExists {
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}
	if create && dbExists {
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	}

	// Ensure the full path to the database exists.
	if !dbExists {
		// The error can be ignored here since the call to
		// leveldb.OpenFile will fail if the directory couldn't be
		// created.
		_ = os.MkdirAll(dbPath, 0700)
	}

	opts := opt.Options{
		ErrorIfExist:   create,
		ErrorIfMissing: !create,
		Strict:         opt.DefaultStrict,
		Compression:    opt.NoCompression,
		Filter:         filter.NewBloomFilter(10),
	}
	ldb, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrExist):
			str := fmt.Sprintf("database %q already exists", dbPath)
			return nil, database.MakeError(database.ErrDbExists, str, err)
		case os.IsNotExist(err):
			str := fmt.Sprintf("database %q does not exist", dbPath)
			return nil, database.MakeError(database.ErrDbDoesNotExist,
				str, err)
		}
		return nil, convertErr("failed to open database", err)
	}

	log.Debugf("Opened database %s", dbPath)
	return &db{ldb: ldb}, nil
}
