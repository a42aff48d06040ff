// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package session - one wallet session owning the local store, the
// balance cache, the pending transactions and the contract watches
package session

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/balance"
	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/lobwallet/messagebus"
	"github.com/bitmark-inc/lobwallet/pending"
	"github.com/bitmark-inc/lobwallet/storage"
	"github.com/bitmark-inc/lobwallet/watcher"
	"github.com/bitmark-inc/logger"
)

// Config - session parameters
//
// an empty Database keeps everything in memory
type Config struct {
	Database      string
	Network       uint64
	Contracts     []common.Address
	Addresses     []common.Address
	StartBlock    uint64
	HistoryExpiry time.Duration
}

// Session - the wallet state of one user
type Session struct {
	sync.Mutex

	log       *logger.L
	client    ledger.Client
	store     *storage.Store
	bus       *messagebus.Bus
	cache     *balance.Cache
	pending   *pending.Ledger
	history   *history.Fetcher
	watcher   *watcher.Watcher
	contracts []common.Address
	addresses []common.Address
	start     uint64
	closed    bool
}

// New - open the store and create all components, nothing is fetched
// until Start
func New(client ledger.Client, config Config) (*Session, error) {
	log := logger.New("session")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	store, err := storage.Open(config.Database)
	if nil != err {
		return nil, err
	}

	p, err := pending.New(store, client, config.Network)
	if nil != err {
		store.Close()
		return nil, err
	}

	bus := messagebus.New()
	cache := balance.New(store, client, p, bus)
	fetcher := history.New(client, config.HistoryExpiry)

	s := &Session{
		log:       log,
		client:    client,
		store:     store,
		bus:       bus,
		cache:     cache,
		pending:   p,
		history:   fetcher,
		watcher:   watcher.New(cache, client, fetcher, config.Addresses),
		contracts: append([]common.Address(nil), config.Contracts...),
		addresses: append([]common.Address(nil), config.Addresses...),
		start:     config.StartBlock,
	}
	p.OnConfirm(s.confirmed)

	return s, nil
}

// Start - refresh all balances then watch every contract
func (s *Session) Start(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return fault.ErrNotInitialised
	}

	for _, contract := range s.contracts {
		err := s.cache.UpdateAllRelevantBalancesForLicenseContract(ctx, contract, s.addresses)
		if nil != err {
			return err
		}
		if s.watcher.Watching(contract) {
			continue
		}
		err = s.watcher.Watch(ctx, contract, s.start)
		if nil != err {
			return err
		}
	}

	s.log.Infof("started: contracts: %d  addresses: %d", len(s.contracts), len(s.addresses))
	return s.pending.Resume(ctx)
}

// SetAddresses - replace the wallet addresses and refresh their balances
func (s *Session) SetAddresses(ctx context.Context, addresses []common.Address) error {
	s.Lock()
	defer s.Unlock()

	s.addresses = append([]common.Address(nil), addresses...)
	s.watcher.SetAddresses(s.addresses)

	for _, contract := range s.contracts {
		err := s.cache.UpdateAllRelevantBalancesForLicenseContract(ctx, contract, s.addresses)
		if nil != err {
			return err
		}
	}
	return nil
}

// Addresses - the wallet addresses
func (s *Session) Addresses() []common.Address {
	s.Lock()
	defer s.Unlock()
	return append([]common.Address(nil), s.addresses...)
}

// ClearAll - stop all watches and forget everything, as on logout
func (s *Session) ClearAll() {
	s.Lock()
	defer s.Unlock()

	s.watcher.StopAll()
	s.pending.Clear()
	s.cache.Clear()
	s.history.Flush()

	s.addresses = nil
	s.watcher.SetAddresses(nil)

	s.log.Info("cleared")
}

// Close - stop all watches and close the store
//
// safe to call more than once
func (s *Session) Close() {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.watcher.StopAll()
	s.pending.Close()
	s.store.Close()

	s.log.Info("closed")
}

// Snapshots - balance history of an issuance
func (s *Session) Snapshots(ctx context.Context, loc issuance.Location) ([]history.Snapshot, error) {
	events, err := s.history.GetLicenseTransfers(ctx, loc)
	if nil != err {
		return nil, err
	}
	return history.ComputeBalanceSnapshots(events), nil
}

// Cache - the balance cache
func (s *Session) Cache() *balance.Cache {
	return s.cache
}

// Pending - the pending transaction ledger
func (s *Session) Pending() *pending.Ledger {
	return s.pending
}

// History - the event history fetcher
func (s *Session) History() *history.Fetcher {
	return s.history
}

// Watcher - the contract watcher
func (s *Session) Watcher() *watcher.Watcher {
	return s.watcher
}

// Bus - balance change notifications
func (s *Session) Bus() *messagebus.Bus {
	return s.bus
}

// refresh the records a confirmed transfer or reclaim changed
//
// the contract watcher does the same when it sees the event, this
// covers contracts that are not watched
func (s *Session) confirmed(tx pending.Transaction) {
	switch tx.Type {
	case pending.Transfer, pending.Reclaim:
	default:
		return
	}

	s.Lock()
	defer s.Unlock()

	loc := tx.Location()
	if s.closed || s.watcher.Watching(loc.LicenseContract) {
		return
	}

	ctx := context.Background()
	for _, a := range s.addresses {
		if a != tx.From && a != tx.To {
			continue
		}
		if err := s.cache.RefreshBalance(ctx, loc, a); nil != err {
			s.log.Warnf("confirmed: %s  refresh: %s  error: %s", tx.Hash.Hex(), a.Hex(), err)
		}
	}
}
