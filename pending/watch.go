// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// one confirmation watch
type watch struct {
	hash         common.Hash
	network      uint64
	cancel       context.CancelFunc
	subscription ledger.Subscription
	once         sync.Once
}

// subscribe for the confirming event and wait for it in the background
func (l *Ledger) watch(ctx context.Context, tx Transaction) error {
	kind, err := tx.Type.EventKind()
	if nil != err {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)

	subscription, err := l.client.Subscribe(watchCtx, ledger.Query{
		Kind:      kind,
		Contract:  tx.LicenseContract,
		FromBlock: tx.WatchForMiningCheckpoint,
	})
	if nil != err {
		cancel()
		l.log.Errorf("watch: %s  error: %s", tx.Hash.Hex(), err)
		return err
	}

	w := &watch{
		hash:         tx.Hash,
		network:      tx.Network,
		cancel:       cancel,
		subscription: subscription,
	}

	l.Lock()
	if l.closed {
		l.Unlock()
		cancel()
		subscription.Unsubscribe()
		return fault.ErrNotInitialised
	}
	if _, ok := l.watches[tx.Hash]; ok {
		l.Unlock()
		cancel()
		subscription.Unsubscribe()
		return nil
	}
	l.watches[tx.Hash] = w
	l.running.Add(1)
	l.Unlock()

	l.active.Increment()

	go l.wait(watchCtx, w, tx)
	return nil
}

func (l *Ledger) wait(ctx context.Context, w *watch, tx Transaction) {
	confirmed, f, ok := l.waitForConfirmation(ctx, w, tx)
	if ok && nil != f {
		f(confirmed)
	}
}

// the part of a watch that Close waits for
func (l *Ledger) waitForConfirmation(ctx context.Context, w *watch, tx Transaction) (Transaction, ConfirmHandler, bool) {
	defer l.running.Done()
	defer l.release(w)

	for {
		select {
		case <-ctx.Done():
			l.log.Debugf("watch ended: %s", w.hash.Hex())
			return Transaction{}, nil, false

		case err := <-w.subscription.Err():
			l.log.Errorf("watch: %s  subscription error: %s", w.hash.Hex(), err)
			return Transaction{}, nil, false

		case e := <-w.subscription.Events():
			if tx.confirmedBy(&e) {
				return l.confirm(w, e.BlockNumber)
			}
		}
	}
}

// release a watch, only the first call has any effect
func (l *Ledger) release(w *watch) {
	w.once.Do(func() {
		w.cancel()
		w.subscription.Unsubscribe()

		l.Lock()
		if l.watches[w.hash] == w {
			delete(l.watches, w.hash)
		}
		l.Unlock()

		l.active.Decrement()
	})
}
