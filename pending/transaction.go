// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// Type - kind of submitted transaction
type Type int

// all transaction types
const (
	Transfer Type = iota
	Reclaim
	LicenseContractCreation
	LicenseContractSigning
	LicenseContractDisabling
	LicenseIssuing
	IssuanceRevoke
)

var typeNames = map[Type]string{
	Transfer:                 "transfer",
	Reclaim:                  "reclaim",
	LicenseContractCreation:  "licenseContractCreation",
	LicenseContractSigning:   "licenseContractSigning",
	LicenseContractDisabling: "licenseContractDisabling",
	LicenseIssuing:           "licenseIssuing",
	IssuanceRevoke:           "issuanceRevoke",
}

// event produced when a transaction of the type is mined
var typeEvents = map[Type]ledger.EventKind{
	Transfer:                 ledger.Transfer,
	Reclaim:                  ledger.Reclaim,
	LicenseContractCreation:  ledger.LicenseContractCreation,
	LicenseContractSigning:   ledger.Signing,
	LicenseContractDisabling: ledger.Disabling,
	LicenseIssuing:           ledger.Issuing,
	IssuanceRevoke:           ledger.Revoke,
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "*Unknown*"
}

// MarshalText - type name for JSON
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fault.ErrUnknownTransactionType
	}
	return []byte(t.String()), nil
}

// UnmarshalText - type from its JSON name
func (t *Type) UnmarshalText(s []byte) error {
	for k, name := range typeNames {
		if name == string(s) {
			*t = k
			return nil
		}
	}
	return fault.ErrUnknownTransactionType
}

// EventKind - event that confirms a transaction of this type
func (t Type) EventKind() (ledger.EventKind, error) {
	kind, ok := typeEvents[t]
	if !ok {
		return 0, fault.ErrUnknownTransactionType
	}
	return kind, nil
}

// Transaction - a locally submitted transaction
//
// LicenseContract is the emitting contract, for LicenseContractCreation
// that is the root contract.  IssuanceID, From, To, Amount and
// Reclaimable are only used by Transfer and Reclaim, IssuanceID also by
// IssuanceRevoke.  For Reclaim, From is the current owner and To the
// reclaimer.
type Transaction struct {
	Type                     Type           `json:"type"`
	Hash                     common.Hash    `json:"hash"`
	SubmittedBy              common.Address `json:"submittedBy"`
	Network                  uint64         `json:"network"`
	BlockNumber              *uint64        `json:"blockNumber"`
	Timestamp                time.Time      `json:"timestamp"`
	WatchForMiningCheckpoint uint64         `json:"watchForMiningCheckpoint"`

	LicenseContract common.Address `json:"licenseContract"`
	IssuanceID      uint64         `json:"issuanceID"`
	From            common.Address `json:"from"`
	To              common.Address `json:"to"`
	Amount          int64          `json:"amount"`
	Reclaimable     bool           `json:"reclaimable"`
}

// Location - the issuance a transfer, reclaim or revoke refers to
func (tx *Transaction) Location() issuance.Location {
	return issuance.New(tx.LicenseContract, tx.IssuanceID)
}

// Confirmed - true once the transaction was seen mined
func (tx *Transaction) Confirmed() bool {
	return nil != tx.BlockNumber
}

// check the fields required by the type
func (tx *Transaction) validate() error {
	if (common.Hash{}) == tx.Hash {
		return fault.ErrMissingTransactionHash
	}
	if _, err := tx.Type.EventKind(); nil != err {
		return err
	}
	switch tx.Type {
	case Transfer, Reclaim:
		if tx.Amount <= 0 {
			return fault.ErrInvalidAmount
		}
	}
	return nil
}

// true if the event is the mined form of the transaction
func (tx *Transaction) confirmedBy(e *ledger.Event) bool {
	return e.TransactionHash == tx.Hash
}
