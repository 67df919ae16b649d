// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

// DB is a minimal ordered key/value store.  Keys are compared bytewise and
// iteration always proceeds in ascending key order.
//
// Implementations must be safe for concurrent use, although callers that need
// read-modify-write semantics across several calls must serialize them.
type DB interface {
	// Type returns the database driver type the current database instance
	// was created with.
	Type() string

	// Get returns a copy of the value for the given key.  ErrValueNotFound
	// is returned when the key does not exist.
	Get(key []byte) ([]byte, error)

	// Has returns whether or not the key exists.
	Has(key []byte) (bool, error)

	// Put stores the value under the given key, overwriting any existing
	// value.  ErrKeyRequired is returned for an empty key.
	Put(key, value []byte) error

	// Delete removes the key.  Deleting a key that does not exist is not an
	// error.
	Delete(key []byte) error

	// NewCursor returns a cursor over the whole keyspace.  The cursor is
	// positioned before the first key until Seek or Next is called.
	NewCursor() (Cursor, error)

	// Close cleanly shuts down the database and syncs all data.
	Close() error
}

// Cursor iterates key/value pairs in ascending key order.  The slices returned
// by Key and Value are only valid until the next call that moves the cursor.
type Cursor interface {
	// Seek positions the cursor at the first key that is greater than or
	// equal to the given key and reports whether such a key exists.
	Seek(key []byte) bool

	// Next moves the cursor to the next key.  On a cursor that has not been
	// positioned yet, it moves to the first key.  It reports whether the
	// cursor points at a valid pair.
	Next() bool

	// Key returns the current key.
	Key() []byte

	// Value returns the current value.
	Value() []byte

	// Err returns any error accumulated while iterating.
	Err() error

	// Close releases the resources held by the cursor.
	Close() error
}
