// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Query - selects events of one kind from one contract
//
// IssuanceID restricts Transfer and Reclaim events to one issuance when
// not nil.  FromBlock is inclusive.
type Query struct {
	Kind       EventKind
	Contract   common.Address
	IssuanceID *uint64
	FromBlock  uint64
}

// ForIssuance - convenience to set the issuance restriction
func (q Query) ForIssuance(id uint64) Query {
	q.IssuanceID = &id
	return q
}

// Matches - true if an event satisfies the query
//
// used to drop false positives returned by topic filtering
func (q *Query) Matches(e *Event) bool {
	if e.Kind != q.Kind || e.Contract != q.Contract {
		return false
	}
	if e.BlockNumber < q.FromBlock {
		return false
	}
	if nil != q.IssuanceID && *q.IssuanceID != e.IssuanceID {
		switch q.Kind {
		case Transfer, Reclaim, Issuing, Revoke:
			return false
		}
	}
	return true
}

// Subscription - a live event feed
//
// Events are delivered until Unsubscribe is called or a value is sent on
// Err; Unsubscribe may be called any number of times
type Subscription interface {
	Events() <-chan Event
	Err() <-chan error
	Unsubscribe()
}

//go:generate mockgen -destination=mocks/client.go -package=mocks github.com/bitmark-inc/lobwallet/ledger Client
//go:generate mockgen -destination=mocks/subscription.go -package=mocks github.com/bitmark-inc/lobwallet/ledger Subscription

// Client - read only accessors of the license contracts
type Client interface {
	// units of the issuance held by owner, borrowed units included
	Balance(ctx context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error)

	// units held by owner that others may reclaim, i.e. the borrowed balance
	ReclaimableBalance(ctx context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error)

	// units reclaimer may reclaim from currentOwner
	ReclaimableBalanceBy(ctx context.Context, contract common.Address, issuanceID uint64, currentOwner common.Address, reclaimer common.Address) (int64, error)

	// contract maintained index of issuances touching owner
	RelevantIssuancesCount(ctx context.Context, contract common.Address, owner common.Address) (uint64, error)
	RelevantIssuances(ctx context.Context, contract common.Address, owner common.Address, index uint64) (uint64, error)

	// contract maintained index of addresses reclaimer lent units to
	AddressesLicensesCanBeReclaimedFromCount(ctx context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address) (uint64, error)
	AddressesLicensesCanBeReclaimedFrom(ctx context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address, index uint64) (common.Address, error)

	// all events matching the query up to the latest block
	FilterEvents(ctx context.Context, query Query) ([]Event, error)

	// events matching the query from FromBlock on, then live
	Subscribe(ctx context.Context, query Query) (Subscription, error)
}
