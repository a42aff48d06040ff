// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package watcher - keep the balance cache current by following the
// events of license contracts
//
// each watched contract has one background process reading its
// Transfer, Reclaim, Issuing and Revoke subscriptions.  An event
// triggers a fetch of the affected records, a failed fetch is logged
// and that single update is dropped.
package watcher

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/background"
	"github.com/bitmark-inc/lobwallet/balance"
	"github.com/bitmark-inc/lobwallet/counter"
	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/logger"
)

// the events that change balances, in subscription order
var watchedKinds = []ledger.EventKind{
	ledger.Transfer,
	ledger.Reclaim,
	ledger.Issuing,
	ledger.Revoke,
}

// Watcher - the set of watched contracts
type Watcher struct {
	sync.RWMutex

	log       *logger.L
	cache     *balance.Cache
	client    ledger.Client
	history   *history.Fetcher
	addresses map[common.Address]struct{}
	running   map[common.Address]*contractWatch

	dropped counter.Counter
}

// New - create a watcher for a set of addresses
//
// history may be nil
func New(cache *balance.Cache, client ledger.Client, history *history.Fetcher, addresses []common.Address) *Watcher {
	w := &Watcher{
		log:     logger.New("watcher"),
		cache:   cache,
		client:  client,
		history: history,
		running: make(map[common.Address]*contractWatch),
	}
	w.SetAddresses(addresses)
	return w
}

// SetAddresses - replace the watched addresses
func (w *Watcher) SetAddresses(addresses []common.Address) {
	set := make(map[common.Address]struct{}, len(addresses))
	for _, a := range addresses {
		set[a] = struct{}{}
	}

	w.Lock()
	w.addresses = set
	w.Unlock()
}

// Addresses - the watched addresses
func (w *Watcher) Addresses() []common.Address {
	w.RLock()
	defer w.RUnlock()

	addresses := make([]common.Address, 0, len(w.addresses))
	for a := range w.addresses {
		addresses = append(addresses, a)
	}
	return addresses
}

// Watch - follow the events of a contract from a block on
//
// the watch ends when Stop is called, ctx is done or a subscription
// fails
func (w *Watcher) Watch(ctx context.Context, contract common.Address, fromBlock uint64) error {
	w.Lock()
	defer w.Unlock()

	if _, ok := w.running[contract]; ok {
		return fault.ErrWatcherAlreadyRunning
	}

	watchCtx, cancel := context.WithCancel(ctx)

	subscriptions := make([]ledger.Subscription, 0, len(watchedKinds))
	for _, kind := range watchedKinds {
		s, err := w.client.Subscribe(watchCtx, ledger.Query{
			Kind:      kind,
			Contract:  contract,
			FromBlock: fromBlock,
		})
		if nil != err {
			for _, s := range subscriptions {
				s.Unsubscribe()
			}
			cancel()
			w.log.Errorf("watch: %s  kind: %s  error: %s", contract.Hex(), kind, err)
			return fault.LedgerQuery("subscribe "+kind.String(), err)
		}
		subscriptions = append(subscriptions, s)
	}

	cw := &contractWatch{
		owner:         w,
		contract:      contract,
		ctx:           watchCtx,
		cancel:        cancel,
		subscriptions: subscriptions,
	}
	w.running[contract] = cw
	cw.processes = background.Start(background.Processes{cw}, w.log)

	w.log.Infof("watching: %s  from block: %d", contract.Hex(), fromBlock)
	return nil
}

// Watching - true while a contract is watched
func (w *Watcher) Watching(contract common.Address) bool {
	w.RLock()
	defer w.RUnlock()
	_, ok := w.running[contract]
	return ok
}

// Contracts - the watched contracts
func (w *Watcher) Contracts() []common.Address {
	w.RLock()
	defer w.RUnlock()

	contracts := make([]common.Address, 0, len(w.running))
	for c := range w.running {
		contracts = append(contracts, c)
	}
	return contracts
}

// Stop - stop watching a contract
//
// on return no further cache writes are made for it, stopping an
// unwatched contract does nothing
func (w *Watcher) Stop(contract common.Address) {
	w.Lock()
	cw, ok := w.running[contract]
	delete(w.running, contract)
	w.Unlock()

	if ok {
		cw.stop()
	}
}

// StopAll - stop every watch
func (w *Watcher) StopAll() {
	w.Lock()
	all := w.running
	w.running = make(map[common.Address]*contractWatch)
	w.Unlock()

	for _, cw := range all {
		cw.stop()
	}
}

// Dropped - number of updates dropped because a fetch failed
func (w *Watcher) Dropped() uint64 {
	return w.dropped.Uint64()
}

// remove a watch that ended by itself
func (w *Watcher) ended(cw *contractWatch) {
	w.Lock()
	defer w.Unlock()
	if w.running[cw.contract] == cw {
		delete(w.running, cw.contract)
	}
}

// true if any of the addresses is watched
func (w *Watcher) isWatched(a common.Address) bool {
	w.RLock()
	defer w.RUnlock()
	_, ok := w.addresses[a]
	return ok
}
