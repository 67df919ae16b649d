// Copyright (c) 2020 The Decred developers
// Copyright (c) 2024 The wbtcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package progresslog provides periodic logging for checkpoint processing.

Tests are included to ensure proper functionality.

## Feature Overview

- Maintains cumulative totals about checkpoints between each logging interval
  - Total number of checkpoints
  - Lowest and highest checkpoint height

- Logs all cumulative data every 10 seconds
- Immediately logs any outstanding data when forced
*/
package progresslog
