// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	"github.com/wbtcsuite/wbtcd/internal/version"
)

// realMain is the real main function for checkpointctl.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func realMain() error {
	cfg, args, err := loadConfig(os.Args[1:])
	if err != nil {
		var e *flags.Error
		switch {
		case errors.Is(err, errShowVersion):
			fmt.Println(versionString())
			return nil
		case errors.Is(err, errShowSubsystems):
			return nil
		case errors.As(err, &e) && e.Type == flags.ErrHelp:
			fmt.Println(err)
			return nil
		}
		return err
	}

	if !cfg.NoFileLogging {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := initLogRotator(logFile); err != nil {
			return err
		}
		defer closeLogRotator()
	}
	ctlLog.Debugf("Version %s (network %s)", version.Full(), cfg.params.Name)

	return runCommand(cfg, args, os.Stdout)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
