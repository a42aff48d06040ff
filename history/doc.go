// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package history - fetch the full transfer history of an issuance
// and replay it into per address balance snapshots
//
// the fetcher issues the Transfer and Reclaim range queries in
// parallel and merges them into one sequence ordered by block number
// then transaction index.  Results are cached until the watcher
// invalidates them or they expire.
package history
