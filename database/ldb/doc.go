// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2020 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package ldb implements a driver for the database package that uses leveldb
for the backing store.

This driver is the recommended driver for use with wbtcd.  It keeps the whole
keyspace in a single leveldb instance and syncs every write, which suits the
small, write-rarely data it holds.

# Usage

This package is a driver to the database package and provides the database
type of "ldb".  The parameters the Open and Create functions take is the
database path as a string:

	db, err := database.Open("ldb", "path/to/database")
	if err != nil {
		// Handle error
	}

	db, err := database.Create("ldb", "path/to/database")
	if err != nil {
		// Handle error
	}
*/
package ldb
