// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// size of the node to client log buffer
const logBufferSize = 128

// build the node filter for a query
func (c *Client) filterQuery(q ledger.Query) (ethereum.FilterQuery, error) {
	event, ok := c.abi.Events[q.Kind.String()]
	if !ok {
		return ethereum.FilterQuery{}, fault.ErrUnknownEventKind
	}

	topics := [][]common.Hash{{event.ID}}
	if nil != q.IssuanceID {
		switch q.Kind {
		case ledger.Transfer, ledger.Reclaim, ledger.Issuing, ledger.Revoke:
			topics = append(topics, []common.Hash{common.BigToHash(bigID(*q.IssuanceID))})
		}
	}

	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(q.FromBlock),
		Addresses: []common.Address{q.Contract},
		Topics:    topics,
	}, nil
}

// FilterEvents - see ledger.Client
func (c *Client) FilterEvents(ctx context.Context, q ledger.Query) ([]ledger.Event, error) {
	operation := "filter " + q.Kind.String()

	query, err := c.filterQuery(q)
	if nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}
	if err := c.limiter.Wait(ctx); nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}

	logs, err := c.backend.FilterLogs(ctx, query)
	if nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}

	events := make([]ledger.Event, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		e, err := c.decode(q.Kind, l)
		if nil != err {
			return nil, fault.LedgerQuery(operation, err)
		}
		if q.Matches(&e) {
			events = append(events, e)
		}
	}
	ledger.SortEvents(events)
	return events, nil
}

// fields of the events, names follow the ABI argument names
type transferLog struct {
	IssuanceID  *big.Int
	From        common.Address
	To          common.Address
	Amount      *big.Int
	Reclaimable bool
}

type issuanceLog struct {
	IssuanceID *big.Int
}

type creationLog struct {
	LicenseContractAddress common.Address
}

// convert a node log into an event
func (c *Client) decode(kind ledger.EventKind, l types.Log) (ledger.Event, error) {
	e := ledger.Event{
		Kind:             kind,
		Contract:         l.Address,
		BlockNumber:      l.BlockNumber,
		TransactionIndex: l.TxIndex,
		TransactionHash:  l.TxHash,
	}

	name := kind.String()
	bound := c.bound(l.Address)

	switch kind {
	case ledger.Transfer, ledger.Reclaim:
		var fields transferLog
		if err := bound.UnpackLog(&fields, name, l); nil != err {
			return e, err
		}
		if !fields.IssuanceID.IsUint64() || !fields.Amount.IsInt64() {
			return e, fault.ErrValueOutOfRange
		}
		e.IssuanceID = fields.IssuanceID.Uint64()
		e.From = fields.From
		e.To = fields.To
		e.Amount = fields.Amount.Int64()
		e.Reclaimable = fields.Reclaimable

	case ledger.Issuing, ledger.Revoke:
		var fields issuanceLog
		if err := bound.UnpackLog(&fields, name, l); nil != err {
			return e, err
		}
		if !fields.IssuanceID.IsUint64() {
			return e, fault.ErrValueOutOfRange
		}
		e.IssuanceID = fields.IssuanceID.Uint64()

	case ledger.LicenseContractCreation:
		var fields creationLog
		if err := bound.UnpackLog(&fields, name, l); nil != err {
			return e, err
		}
		e.Created = fields.LicenseContractAddress

	case ledger.Signing, ledger.Disabling:

	default:
		return e, fault.ErrUnknownEventKind
	}
	return e, nil
}

// Subscribe - see ledger.Client
//
// the live log feed is opened first and the backlog from FromBlock read
// after it, live logs already in the backlog are skipped
func (c *Client) Subscribe(ctx context.Context, q ledger.Query) (ledger.Subscription, error) {
	operation := "subscribe " + q.Kind.String()

	query, err := c.filterQuery(q)
	if nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}

	logs := make(chan types.Log, logBufferSize)
	live, err := c.backend.SubscribeFilterLogs(ctx, query, logs)
	if nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}

	backlog, err := c.FilterEvents(ctx, q)
	if nil != err {
		live.Unsubscribe()
		return nil, err
	}

	s := &subscription{
		client:  c,
		query:   q,
		live:    live,
		logs:    logs,
		backlog: backlog,
		events:  make(chan ledger.Event),
		errs:    make(chan error, 1),
		quit:    make(chan struct{}),
	}
	go s.forward(ctx)
	return s, nil
}

type subscription struct {
	client  *Client
	query   ledger.Query
	live    ethereum.Subscription
	logs    chan types.Log
	backlog []ledger.Event
	events  chan ledger.Event
	errs    chan error
	quit    chan struct{}
	once    sync.Once
}

func (s *subscription) Events() <-chan ledger.Event {
	return s.events
}

func (s *subscription) Err() <-chan error {
	return s.errs
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.quit)
		s.live.Unsubscribe()
	})
}

// true if a has a position after b
func after(a *ledger.Event, b *ledger.Event) bool {
	return b.Before(a)
}

func (s *subscription) forward(ctx context.Context) {
	defer s.Unsubscribe()

	var last *ledger.Event
	for i := range s.backlog {
		if !s.deliver(ctx, s.backlog[i]) {
			return
		}
		last = &s.backlog[i]
	}
	s.backlog = nil

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return

		case err, ok := <-s.live.Err():
			if ok && nil != err {
				s.fail(err)
			}
			return

		case l := <-s.logs:
			if l.Removed {
				continue
			}
			e, err := s.client.decode(s.query.Kind, l)
			if nil != err {
				s.fail(err)
				return
			}
			if nil != last && !after(&e, last) {
				continue
			}
			if !s.query.Matches(&e) {
				continue
			}
			if !s.deliver(ctx, e) {
				return
			}
		}
	}
}

func (s *subscription) deliver(ctx context.Context, e ledger.Event) bool {
	select {
	case s.events <- e:
		return true
	case <-ctx.Done():
		return false
	case <-s.quit:
		return false
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.errs <- fault.LedgerQuery("subscription "+s.query.Kind.String(), err):
	default:
	}
}
