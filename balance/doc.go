// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balance - the local cache of confirmed license balances
//
// Confirmed records come from the ledger and are only ever
// overwritten with freshly fetched values, never adjusted by a delta.
// Query results add the pending delta of locally submitted but not yet
// mined transactions to the confirmed values.
//
// A query for a record that is not cached fetches it from the ledger,
// stores it and then answers from the store.  Concurrent misses for the
// same record share one fetch.
//
// Every write is published on the message bus.
package balance
