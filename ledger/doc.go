// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the view of the license contracts on chain
//
// Client is the read only collaborator the reconciliation engine talks
// to: balance accessors of a license contract, the contract maintained
// indexes of relevant issuances and reclaim origins, and event range
// queries and subscriptions.
//
// Every failing method returns a *fault.LedgerQueryError.
//
// Subpackages:
//
//   contract  - go-ethereum implementation against a node
//   simulated - in-memory implementation of the contract semantics
//   mocks     - gomock mock of Client
package ledger
