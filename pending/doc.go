// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pending - transactions submitted from this wallet that may
// not be mined yet
//
// Each submitted transaction holds one confirmation watch: a ledger
// subscription for the event its type produces, starting at the block
// recorded when it was submitted.  When an event with the same
// transaction hash arrives the block number is recorded and the watch
// released.  Unconfirmed transactions of the current network adjust
// the balances reported by the cache.
//
// Records are kept after confirmation for history display.
//
// A transaction mined before the checkpoint block given at submission
// is never seen by its watch.
package pending
