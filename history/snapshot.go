// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// Snapshot - balances of every address seen so far, after the event
// mined in BlockNumber was applied
type Snapshot struct {
	Balances    map[common.Address]int64 `json:"balances"`
	BlockNumber uint64                   `json:"blockNumber"`
}

// Total - sum of all balances
func (s *Snapshot) Total() int64 {
	total := int64(0)
	for _, n := range s.Balances {
		total += n
	}
	return total
}

// ComputeBalanceSnapshots - replay ordered events producing one snapshot
// per event
//
// the zero address is never recorded: transfers from it mint and
// transfers to it destroy.  Negative results are kept as is, use
// Verify to detect them.
func ComputeBalanceSnapshots(events []ledger.Event) []Snapshot {

	snapshots := make([]Snapshot, 0, len(events))
	current := make(map[common.Address]int64)

	for i := range events {
		e := &events[i]

		next := make(map[common.Address]int64, len(current)+1)
		for address, n := range current {
			next[address] = n
		}

		if e.From != ledger.ZeroAddress {
			next[e.From] -= e.Amount
		}
		if e.To != ledger.ZeroAddress {
			next[e.To] += e.Amount
		}

		snapshots = append(snapshots, Snapshot{
			Balances:    next,
			BlockNumber: e.BlockNumber,
		})
		current = next
	}
	return snapshots
}

// Verify - check that no snapshot holds a negative balance
//
// the first offending step is reported, and within it the lowest
// negative address
func Verify(snapshots []Snapshot) error {
	for i := range snapshots {
		addresses := make([]common.Address, 0, len(snapshots[i].Balances))
		for address := range snapshots[i].Balances {
			addresses = append(addresses, address)
		}
		sort.Slice(addresses, func(a, b int) bool {
			return bytes.Compare(addresses[a].Bytes(), addresses[b].Bytes()) < 0
		})

		for _, address := range addresses {
			n := snapshots[i].Balances[address]
			if n < 0 {
				return fault.Invariant(
					fault.ErrNegativeSnapshotBalance,
					"step: %d  block: %d  address: %s  balance: %d",
					i, snapshots[i].BlockNumber, address.Hex(), n,
				)
			}
		}
	}
	return nil
}
