// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the wallet's local data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.  An empty
// database name keeps everything in memory.
//
// Notes:
// 1. each separate pool has a single byte prefix
// 2. ⧺            = concatenation of byte data
// 3. address      = 20 byte ethereum address
// 4. location     = 20 byte license contract address ⧺ 8 byte big endian issuance index
// 5. amount       = int64 as big endian 8 bytes
// 6. hash         = 32 byte transaction hash
//
// Balances:
//
//   B ⧺ address ⧺ location               - confirmed balance of an address
//                                          data: balance amount ⧺ borrowed amount
//
// Reclaimable:
//
//   R ⧺ reclaimer ⧺ location ⧺ owner     - amount reclaimer may reclaim from owner
//                                          data: amount
//   S ⧺ reclaimer ⧺ location             - reclaim origins of reclaimer were enumerated
//                                          data: empty
//
// Issuances:
//
//   X ⧺ location                         - issuance revoked
//                                          data: empty
//
// Pending transactions:
//
//   P ⧺ hash                             - locally submitted transaction
//                                          data: JSON record
package storage
