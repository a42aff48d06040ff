// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pending

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/counter"
	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/lobwallet/storage"
	"github.com/bitmark-inc/logger"
)

// ConfirmHandler - called once for each transaction seen mined
type ConfirmHandler func(tx Transaction)

// Ledger - the locally submitted transactions
type Ledger struct {
	sync.RWMutex

	log     *logger.L
	store   *storage.Store
	client  ledger.Client
	network uint64

	// mirror of the pending pool
	transactions map[common.Hash]*Transaction

	watches   map[common.Hash]*watch
	active    counter.Counter
	running   sync.WaitGroup
	closed    bool
	onConfirm ConfirmHandler
}

// New - load the stored transactions
//
// no watches are started, see Resume
func New(store *storage.Store, client ledger.Client, network uint64) (*Ledger, error) {
	log := logger.New("pending")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	l := &Ledger{
		log:          log,
		store:        store,
		client:       client,
		network:      network,
		transactions: make(map[common.Hash]*Transaction),
		watches:      make(map[common.Hash]*watch),
	}

	err := store.Pending.Map(func(key []byte, value []byte) error {
		var tx Transaction
		if err := json.Unmarshal(value, &tx); nil != err {
			log.Errorf("discard record: %x  error: %s", key, err)
			return nil
		}
		l.transactions[tx.Hash] = &tx
		return nil
	})
	if nil != err {
		return nil, err
	}

	log.Infof("network: %d  transactions: %d", network, len(l.transactions))
	return l, nil
}

// OnConfirm - set the function called after a transaction is confirmed
//
// the handler runs on the watch goroutine after the record is stored
// and may still run after Close has returned
func (l *Ledger) OnConfirm(f ConfirmHandler) {
	l.Lock()
	defer l.Unlock()
	l.onConfirm = f
}

// Network - the current network
func (l *Ledger) Network() uint64 {
	l.RLock()
	defer l.RUnlock()
	return l.network
}

// Submit - record a transaction and watch for it being mined
//
// the watch lasts until it sees the transaction, is cancelled or ctx
// is done.  When the watch cannot be started the record is still kept
// and Resume can retry.  A zero timestamp is set to the current time.
func (l *Ledger) Submit(ctx context.Context, tx Transaction) error {
	if err := tx.validate(); nil != err {
		return err
	}
	if tx.Network != l.Network() {
		return fault.ErrWrongNetworkForTransaction
	}

	tx.BlockNumber = nil
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	l.Lock()
	if l.closed {
		l.Unlock()
		return fault.ErrNotInitialised
	}
	if _, ok := l.transactions[tx.Hash]; ok {
		l.Unlock()
		return fault.ErrTransactionAlreadyExists
	}
	l.put(&tx)
	l.Unlock()

	l.log.Infof("submitted: %s  type: %s  network: %d", tx.Hash.Hex(), tx.Type, tx.Network)

	return l.watch(ctx, tx)
}

// Resume - start watches for every unconfirmed transaction of the
// current network that is not watched
func (l *Ledger) Resume(ctx context.Context) error {
	l.RLock()
	waiting := make([]Transaction, 0, len(l.transactions))
	for hash, tx := range l.transactions {
		if tx.Confirmed() || tx.Network != l.network {
			continue
		}
		if _, ok := l.watches[hash]; ok {
			continue
		}
		waiting = append(waiting, *tx)
	}
	l.RUnlock()

	for _, tx := range waiting {
		if err := l.watch(ctx, tx); nil != err {
			return err
		}
	}
	return nil
}

// Cancel - release the watch of a transaction without confirming it
//
// the record is kept, cancelling an unwatched transaction does nothing
func (l *Ledger) Cancel(hash common.Hash) error {
	l.RLock()
	_, ok := l.transactions[hash]
	w := l.watches[hash]
	l.RUnlock()

	if !ok {
		return fault.ErrTransactionNotFound
	}
	if nil != w {
		l.release(w)
	}
	return nil
}

// Remove - cancel the watch and delete the record
func (l *Ledger) Remove(hash common.Hash) error {
	if err := l.Cancel(hash); nil != err {
		return err
	}

	l.Lock()
	defer l.Unlock()

	delete(l.transactions, hash)
	l.store.Pending.Delete(hash.Bytes())
	return nil
}

// ActiveWatches - number of watches not yet released
func (l *Ledger) ActiveWatches() uint64 {
	return l.active.Uint64()
}

// SetNetwork - switch network, watches of other networks are released
func (l *Ledger) SetNetwork(network uint64) {
	l.Lock()
	l.network = network
	others := make([]*watch, 0, len(l.watches))
	for _, w := range l.watches {
		if w.network != network {
			others = append(others, w)
		}
	}
	l.Unlock()

	l.log.Infof("network: %d  released watches: %d", network, len(others))

	for _, w := range others {
		l.release(w)
	}
}

// Get - a single transaction
func (l *Ledger) Get(hash common.Hash) (Transaction, error) {
	l.RLock()
	defer l.RUnlock()

	tx, ok := l.transactions[hash]
	if !ok {
		return Transaction{}, fault.ErrTransactionNotFound
	}
	return *tx, nil
}

// List - every stored transaction, oldest first
func (l *Ledger) List() []Transaction {
	l.RLock()
	list := make([]Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		list = append(list, *tx)
	}
	l.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Hash.Hex() < list[j].Hash.Hex()
		}
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	return list
}

// Close - release all watches, records are kept
//
// returns after every watch goroutine has stopped writing, so the
// store can be closed next; later Submit and Resume fail
func (l *Ledger) Close() {
	l.Lock()
	l.closed = true
	l.Unlock()

	l.stopWatches()
}

// Clear - release all watches and delete all records
func (l *Ledger) Clear() {
	l.stopWatches()

	l.Lock()
	defer l.Unlock()

	l.transactions = make(map[common.Hash]*Transaction)
	l.store.Pending.Clear()
	l.log.Info("cleared")
}

// release every watch and wait for their goroutines
func (l *Ledger) stopWatches() {
	l.RLock()
	all := make([]*watch, 0, len(l.watches))
	for _, w := range l.watches {
		all = append(all, w)
	}
	l.RUnlock()

	for _, w := range all {
		l.release(w)
	}
	l.running.Wait()
}

// store a record, must hold lock
func (l *Ledger) put(tx *Transaction) {
	buffer, err := json.Marshal(tx)
	logger.PanicIfError("pending.put", err)

	l.store.Pending.Put(tx.Hash.Bytes(), buffer)
	l.transactions[tx.Hash] = tx
}

// record the block a transaction was mined in
//
// nothing is written once the watch was released, as the store may
// be closing
func (l *Ledger) confirm(w *watch, blockNumber uint64) (Transaction, ConfirmHandler, bool) {
	l.Lock()
	defer l.Unlock()

	if l.watches[w.hash] != w {
		l.log.Debugf("confirm: %s  watch already released", w.hash.Hex())
		return Transaction{}, nil, false
	}
	tx, ok := l.transactions[w.hash]
	if !ok {
		return Transaction{}, nil, false
	}

	confirmed := *tx
	confirmed.BlockNumber = &blockNumber
	l.put(&confirmed)

	l.log.Infof("confirmed: %s  block: %d", w.hash.Hex(), blockNumber)
	return confirmed, l.onConfirm, true
}
