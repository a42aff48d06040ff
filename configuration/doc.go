// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua configuration file
//
// most of base Lua is available such as reading files to set key data
// and getenv to extract environment supplied items.
//
// The file must return a table, e.g.:
//
//   local M = {}
//   M.data_directory = "."
//   M.network = 3
//   M.ethereum = { url = "ws://127.0.0.1:8546", rate_limit = 20 }
//   M.license_contracts = { "0x1c00..." }
//   M.addresses = { address(os.getenv("WALLET_ADDRESS")) }
//   M.logging = { directory = "log", file = "lobwatch.log", levels = { DEFAULT = "info" } }
//   return M
package configuration
