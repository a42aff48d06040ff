// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package broadcast - forward balance change notifications to
// websocket clients
//
// each notification is one JSON text message; clients do not send
// anything, reads only detect the close
//
// a client that does not keep up loses notifications rather than
// slowing the others down
package broadcast
