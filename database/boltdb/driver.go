// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package boltdb implements a driver for the database package that uses bbolt
// for the backing store.
//
// The database type is "boltdb" and Create and Open take the database
// directory as their only argument.  All data lives in a single bucket of one
// file inside that directory.
package boltdb

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/wbtcsuite/wbtcd/database"
)

const dbType = "boltdb"

// createDBDriver is the callback provided during driver registration that
// creates, initializes, and opens a database for use.
func createDBDriver(args ...interface{}) (database.DB, error) {
	dbPath, err := database.ParsePathArg(dbType, "Create", args...)
	if err != nil {
		return nil, err
	}

	return openDB(dbPath, true)
}

// openDBDriver is the callback provided during driver registration that opens
// an existing database for use.
func openDBDriver(args ...interface{}) (database.DB, error) {
	dbPath, err := database.ParsePathArg(dbType, "Open", args...)
	if err != nil {
		return nil, err
	}

	return openDB(dbPath, false)
}

// useLogger is the callback provided during driver registration that sets the
// current logger to the provided one.
func useLogger(logger slog.Logger) {
	log = logger
}

func init() {
	driver := database.Driver{
		DbType:    dbType,
		Create:    createDBDriver,
		Open:      openDBDriver,
		UseLogger: useLogger,
	}
	if err := database.RegisterDriver(driver); err != nil {
		panic(fmt.Sprintf("Failed to register database driver '%s': %v",
			dbType, err))
	}
}
