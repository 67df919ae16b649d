// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dbtest provides a conformance suite shared by the database driver
// tests.
package dbtest

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/wbtcsuite/wbtcd/database"
)

type kv struct {
	key   []byte
	value []byte
}

// TestInterface runs the full set of contract checks against an empty,
// freshly created database of the given type.
func TestInterface(t *testing.T, db database.DB, dbType string) {
	t.Helper()

	if got := db.Type(); got != dbType {
		t.Fatalf("unexpected database type -- got %q, want %q", got,
			dbType)
	}

	testEmpty(t, db)
	testPutGet(t, db)
	testCursor(t, db)
	testDelete(t, db)
}

func testEmpty(t *testing.T, db database.DB) {
	t.Helper()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, database.ErrValueNotFound) {
		t.Fatalf("Get on missing key: unexpected error -- got %v, want %v",
			err, database.ErrValueNotFound)
	}
	has, err := db.Has([]byte("missing"))
	if err != nil {
		t.Fatalf("Has: unexpected error: %v", err)
	}
	if has {
		t.Fatal("Has: reported missing key as present")
	}
	if err := db.Put(nil, []byte("v")); !errors.Is(err, database.ErrKeyRequired) {
		t.Fatalf("Put with empty key: unexpected error -- got %v, want %v",
			err, database.ErrKeyRequired)
	}

	c, err := db.NewCursor()
	if err != nil {
		t.Fatalf("NewCursor: unexpected error: %v", err)
	}
	defer c.Close()
	if c.Next() {
		t.Fatalf("Next on empty database returned key %x", c.Key())
	}
	if c.Seek([]byte{0x00}) {
		t.Fatalf("Seek on empty database returned key %x", c.Key())
	}
	if err := c.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}
}

func testPutGet(t *testing.T, db database.DB) {
	t.Helper()

	key := []byte("key")
	value := []byte("value")
	if err := db.Put(key, value); err != nil {
		t.Fatalf("Put: unexpected error: %v", err)
	}

	// Mutating the caller's buffers after the put must not affect the
	// stored value.
	value[0] = 'X'
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Fatalf("Get: unexpected value -- got %q, want %q", got, "value")
	}

	// Overwrite.
	if err := db.Put(key, []byte("other")); err != nil {
		t.Fatalf("Put overwrite: unexpected error: %v", err)
	}
	got, err = db.Get(key)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if !bytes.Equal(got, []byte("other")) {
		t.Fatalf("Get after overwrite: got %q, want %q", got, "other")
	}
	has, err := db.Has(key)
	if err != nil || !has {
		t.Fatalf("Has: got %v (err %v), want true", has, err)
	}

	if err := db.Delete(key); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
}

func testCursor(t *testing.T, db database.DB) {
	t.Helper()

	// Insert out of order so the iteration order is checked.
	pairs := []kv{
		{[]byte{'c', 0, 0, 0, 3}, []byte("three")},
		{[]byte{'a', 1}, []byte("before")},
		{[]byte{'c', 0, 0, 0, 1}, []byte("one")},
		{[]byte{'d'}, []byte("after")},
		{[]byte{'c', 0, 0, 1, 0}, []byte("two-five-six")},
	}
	for _, p := range pairs {
		if err := db.Put(p.key, p.value); err != nil {
			t.Fatalf("Put %x: unexpected error: %v", p.key, err)
		}
	}

	want := []kv{
		{[]byte{'a', 1}, []byte("before")},
		{[]byte{'c', 0, 0, 0, 1}, []byte("one")},
		{[]byte{'c', 0, 0, 0, 3}, []byte("three")},
		{[]byte{'c', 0, 0, 1, 0}, []byte("two-five-six")},
		{[]byte{'d'}, []byte("after")},
	}

	// Full scan via Next on an unpositioned cursor.
	got := collect(t, db, nil)
	if !equalPairs(got, want) {
		t.Fatalf("full scan mismatch -- got %v, want %v", spew.Sdump(got),
			spew.Sdump(want))
	}

	// Scan from a seek key that does not exist lands on the next key.
	got = collect(t, db, []byte{'c', 0, 0, 0, 2})
	if !equalPairs(got, want[2:]) {
		t.Fatalf("seek scan mismatch -- got %v, want %v", spew.Sdump(got),
			spew.Sdump(want[2:]))
	}

	// Seek past the last key.
	c, err := db.NewCursor()
	if err != nil {
		t.Fatalf("NewCursor: unexpected error: %v", err)
	}
	if c.Seek([]byte{'e'}) {
		t.Fatalf("Seek past end returned key %x", c.Key())
	}
	c.Close()

	for _, p := range pairs {
		if err := db.Delete(p.key); err != nil {
			t.Fatalf("Delete %x: unexpected error: %v", p.key, err)
		}
	}
}

func testDelete(t *testing.T, db database.DB) {
	t.Helper()

	key := []byte("gone")
	if err := db.Delete(key); err != nil {
		t.Fatalf("Delete of missing key: unexpected error: %v", err)
	}
	if err := db.Put(key, []byte{0x01}); err != nil {
		t.Fatalf("Put: unexpected error: %v", err)
	}
	if err := db.Delete(key); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if _, err := db.Get(key); !errors.Is(err, database.ErrValueNotFound) {
		t.Fatalf("Get after delete: got %v, want %v", err,
			database.ErrValueNotFound)
	}
	if got := collect(t, db, nil); len(got) != 0 {
		t.Fatalf("database not empty after deletes: %v", spew.Sdump(got))
	}
}

// collect returns every pair from the seek key onwards, or the whole
// keyspace when seek is nil.
func collect(t *testing.T, db database.DB, seek []byte) []kv {
	t.Helper()

	c, err := db.NewCursor()
	if err != nil {
		t.Fatalf("NewCursor: unexpected error: %v", err)
	}
	defer c.Close()

	var pairs []kv
	var ok bool
	if seek != nil {
		ok = c.Seek(seek)
	} else {
		ok = c.Next()
	}
	for ; ok; ok = c.Next() {
		pairs = append(pairs, kv{
			key:   append([]byte(nil), c.Key()...),
			value: append([]byte(nil), c.Value()...),
		})
	}
	if err := c.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}
	return pairs
}

func equalPairs(a, b []kv) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].key, b[i].key) ||
			!bytes.Equal(a[i].value, b[i].value) {
			return false
		}
	}
	return true
}

func (p kv) String() string {
	return fmt.Sprintf("%x=%x", p.key, p.value)
}
