// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/issuance"
)

// EventKind - type of contract event
type EventKind int

// all event kinds
const (
	Transfer EventKind = iota
	Reclaim
	Issuing
	Revoke
	Signing
	Disabling
	LicenseContractCreation
)

// String - name of the event as used by the contract
func (k EventKind) String() string {
	switch k {
	case Transfer:
		return "Transfer"
	case Reclaim:
		return "Reclaim"
	case Issuing:
		return "Issuing"
	case Revoke:
		return "Revoke"
	case Signing:
		return "Signing"
	case Disabling:
		return "Disabling"
	case LicenseContractCreation:
		return "LicenseContractCreation"
	default:
		return "*Unknown*"
	}
}

// ZeroAddress - from on a mint, to on a destroy
var ZeroAddress = common.Address{}

// Event - one contract event
//
// Contract is the emitting contract.  For LicenseContractCreation it is the
// root contract and Created holds the new license contract; From, To,
// Amount and Reclaimable are only set for Transfer and Reclaim.
//
// For a Reclaim, From is the current owner the units are taken from and
// To is the reclaimer.
type Event struct {
	Kind             EventKind      `json:"kind"`
	Contract         common.Address `json:"contract"`
	IssuanceID       uint64         `json:"issuanceID"`
	From             common.Address `json:"from"`
	To               common.Address `json:"to"`
	Amount           int64          `json:"amount"`
	Reclaimable      bool           `json:"reclaimable"`
	Created          common.Address `json:"created,omitempty"`
	BlockNumber      uint64         `json:"blockNumber"`
	TransactionIndex uint           `json:"transactionIndex"`
	TransactionHash  common.Hash    `json:"transactionHash"`
}

// Location - the issuance an event refers to
func (e *Event) Location() issuance.Location {
	return issuance.New(e.Contract, e.IssuanceID)
}

// IsMint - units created from nothing
func (e *Event) IsMint() bool {
	return ZeroAddress == e.From
}

// IsBurn - units destroyed
func (e *Event) IsBurn() bool {
	return ZeroAddress == e.To
}

// Before - strict chain order: block number then transaction index
func (e *Event) Before(other *Event) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	return e.TransactionIndex < other.TransactionIndex
}

// SortEvents - stable sort into chain order
//
// only block number and transaction index are compared so events with
// an equal position keep their relative input order
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(&events[j])
	})
}
