// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/issuance"
)

// PendingBalanceChange - change to the balance of the addresses from
// unconfirmed transfers sent by them
func (l *Ledger) PendingBalanceChange(loc issuance.Location, addresses []common.Address) int64 {
	return l.sum(Transfer, loc, func(tx *Transaction) bool {
		return contains(addresses, tx.From)
	})
}

// PendingReclaimableBalance - change to what the reclaimers may reclaim
// from unconfirmed reclaims made by them
func (l *Ledger) PendingReclaimableBalance(loc issuance.Location, reclaimers []common.Address) int64 {
	return l.sum(Reclaim, loc, func(tx *Transaction) bool {
		return contains(reclaimers, tx.To)
	})
}

// PendingReclaimableBalanceFrom - as PendingReclaimableBalance restricted
// to reclaims from one current owner
func (l *Ledger) PendingReclaimableBalanceFrom(loc issuance.Location, reclaimers []common.Address, currentOwner common.Address) int64 {
	return l.sum(Reclaim, loc, func(tx *Transaction) bool {
		return tx.From == currentOwner && contains(reclaimers, tx.To)
	})
}

// negated sum of unconfirmed amounts on the current network
func (l *Ledger) sum(t Type, loc issuance.Location, selected func(tx *Transaction) bool) int64 {
	l.RLock()
	defer l.RUnlock()

	total := int64(0)
	for _, tx := range l.transactions {
		if tx.Type != t || tx.Confirmed() || tx.Network != l.network {
			continue
		}
		if tx.Location() != loc || !selected(tx) {
			continue
		}
		total -= tx.Amount
	}
	return total
}

func contains(addresses []common.Address, a common.Address) bool {
	for _, address := range addresses {
		if address == a {
			return true
		}
	}
	return false
}
