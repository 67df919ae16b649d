// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2022 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package database provides a minimal ordered key/value contract and a driver
registry for the backends that implement it.

The checkpoint store and anything else that needs durable ordered storage is
written against the DB and Cursor interfaces so the backend can be chosen at
runtime.  Backends register themselves from their package init functions, so
importing a driver package for its side effects is all that is needed to make
it available:

	import (
		"github.com/wbtcsuite/wbtcd/database"
		_ "github.com/wbtcsuite/wbtcd/database/ldb"
	)

	db, err := database.Create("ldb", "/path/to/db")

# Errors

Errors returned by this package and the drivers are of type database.Error and
carry an ErrorKind that can be checked with errors.Is, for example
database.ErrValueNotFound or database.ErrDbDoesNotExist.  Failures of the
underlying backend are reported with ErrDriverSpecific and the backend error
kept in the RawErr field.
*/
package database
