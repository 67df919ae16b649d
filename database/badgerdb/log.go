// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package badgerdb

import (
	"github.com/decred/slog"
)

// log is a logger that is initialized with no output filters.  This
// means the package will not perform any logging by default until the caller
// requests it.
var log = slog.Disabled

// badgerLogger routes badger's internal logging to the package logger.  It
// looks the logger up on every call so a later UseLogger takes effect for
// databases that are already open.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}
