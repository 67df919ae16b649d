// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memdb implements a volatile in-memory database driver backed by the
// goleveldb memory database.
//
// Both Create and Open take no arguments and return a new empty database, so
// the driver is only useful for tests and dry runs.
package memdb

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/wbtcsuite/wbtcd/database"
)

const dbType = "memdb"

func newDB(funcName string, args ...interface{}) (database.DB, error) {
	if len(args) != 0 {
		str := fmt.Sprintf("invalid arguments to %s.%s -- expected none",
			dbType, funcName)
		return nil, database.MakeError(database.ErrInvalid, str, nil)
	}
	log.Tracef("Created new in-memory database")
	return New(), nil
}

// createDBDriver is the callback provided during driver registration that
// creates a new database.
func createDBDriver(args ...interface{}) (database.DB, error) {
	return newDB("Create", args...)
}

// openDBDriver is the callback provided during driver registration that opens
// an existing database for use.
func openDBDriver(args ...interface{}) (database.DB, error) {
	return newDB("Open", args...)
}

// useLogger is the callback provided during driver registration that sets the
// current logger to the provided one.
func useLogger(logger slog.Logger) {
	log = logger
}

func init() {
	// Register the driver.
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
