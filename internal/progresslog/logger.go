// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/slog"
)

// logInterval is the minimum time between progress messages that are not
// forced.
const logInterval = time.Second * 10

// pickNoun returns the singular or plural form of a noun depending on the
// provided count.
func pickNoun(n uint64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Logger provides periodic logging of progress towards some action such as
// importing checkpoints.
type Logger struct {
	sync.Mutex
	subsystemLogger slog.Logger
	progressAction  string

	// lastLogTime tracks the last time a log statement was shown.
	lastLogTime time.Time

	// These fields accumulate information about checkpoints between log
	// statements.
	receivedCheckpoints uint64
	lowestHeight        int64
	highestHeight       int64
}

// New returns a new checkpoint progress logger.
func New(progressAction string, logger slog.Logger) *Logger {
	return &Logger{
		lastLogTime:     time.Now(),
		progressAction:  progressAction,
		subsystemLogger: logger,
	}
}

// LogProgress accumulates details for the provided checkpoint and periodically
// (every 10 seconds) logs an information message to show progress to the user
// along with duration and totals included.
//
// The force flag may be used to force a log message to be shown regardless of
// the time the last one was shown.
//
// The progress message is templated as follows:
//
//	{progressAction} {numProcessed} {checkpoints|checkpoint} in the last
//	{timePeriod} (heights {lowestHeight}-{highestHeight}, last {lastHash})
func (l *Logger) LogProgress(height int64, hash *chainhash.Hash, forceLog bool) {
	l.Lock()
	defer l.Unlock()

	if l.receivedCheckpoints == 0 || height < l.lowestHeight {
		l.lowestHeight = height
	}
	if l.receivedCheckpoints == 0 || height > l.highestHeight {
		l.highestHeight = height
	}
	l.receivedCheckpoints++
	now := time.Now()
	duration := now.Sub(l.lastLogTime)
	if !forceLog && duration < logInterval {
		return
	}

	// Log information about the progress.
	l.subsystemLogger.Infof("%s %d %s in the last %0.2fs (heights %d-%d, "+
		"last %v)", l.progressAction, l.receivedCheckpoints,
		pickNoun(l.receivedCheckpoints, "checkpoint", "checkpoints"),
		duration.Seconds(), l.lowestHeight, l.highestHeight, hash)

	l.receivedCheckpoints = 0
	l.lowestHeight = 0
	l.highestHeight = 0
	l.lastLogTime = now
}

// SetLastLogTime updates the last time data was logged to the provided time.
func (l *Logger) SetLastLogTime(time time.Time) {
	l.Lock()
	l.lastLogTime = time
	l.Unlock()
}
