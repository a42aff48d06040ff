// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance

import (
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/lobwallet/messagebus"
	"github.com/bitmark-inc/lobwallet/storage"
	"github.com/bitmark-inc/logger"
)

// PendingSource - deltas of unconfirmed local transactions
type PendingSource interface {
	PendingBalanceChange(loc issuance.Location, addresses []common.Address) int64
	PendingReclaimableBalance(loc issuance.Location, reclaimers []common.Address) int64
	PendingReclaimableBalanceFrom(loc issuance.Location, reclaimers []common.Address, currentOwner common.Address) int64
}

// used when no pending ledger is attached
type noPending struct{}

func (noPending) PendingBalanceChange(issuance.Location, []common.Address) int64 { return 0 }
func (noPending) PendingReclaimableBalance(issuance.Location, []common.Address) int64 {
	return 0
}
func (noPending) PendingReclaimableBalanceFrom(issuance.Location, []common.Address, common.Address) int64 {
	return 0
}

// Cache - confirmed balances of the watched addresses
type Cache struct {
	sync.RWMutex

	// incremented by Clear, a fetch started under an older
	// generation must not be written
	generation uint64

	log     *logger.L
	store   *storage.Store
	client  ledger.Client
	pending PendingSource
	bus     *messagebus.Bus
	misses  singleflight.Group
}

// New - create a cache over an open store
//
// pending and bus may be nil
func New(store *storage.Store, client ledger.Client, pending PendingSource, bus *messagebus.Bus) *Cache {
	if nil == pending {
		pending = noPending{}
	}
	return &Cache{
		log:     logger.New("balance"),
		store:   store,
		client:  client,
		pending: pending,
		bus:     bus,
	}
}

// Record - the confirmed state of one address in one issuance
type Record struct {
	Balance  int64 `json:"balance"`
	Borrowed int64 `json:"borrowed"`
}

// Owned - units that are not borrowed
func (r Record) Owned() int64 {
	return r.Balance - r.Borrowed
}

const recordLength = 16

func (r Record) pack() []byte {
	buffer := make([]byte, recordLength)
	binary.BigEndian.PutUint64(buffer[:8], uint64(r.Balance))
	binary.BigEndian.PutUint64(buffer[8:], uint64(r.Borrowed))
	return buffer
}

func unpackRecord(buffer []byte) Record {
	if len(buffer) < recordLength {
		logger.Panicf("balance: truncated record: %x", buffer)
	}
	return Record{
		Balance:  storage.DecodeN(buffer[:8]),
		Borrowed: storage.DecodeN(buffer[8:]),
	}
}

// keys, see storage package documentation

func balanceKey(address common.Address, loc issuance.Location) []byte {
	return append(address.Bytes(), loc.Bytes()...)
}

func scanKey(reclaimer common.Address, loc issuance.Location) []byte {
	return append(reclaimer.Bytes(), loc.Bytes()...)
}

func reclaimKey(reclaimer common.Address, loc issuance.Location, owner common.Address) []byte {
	return append(scanKey(reclaimer, loc), owner.Bytes()...)
}

// get a cached record
func (c *Cache) record(address common.Address, loc issuance.Location) (Record, bool) {
	buffer := c.store.Balances.Get(balanceKey(address, loc))
	if nil == buffer {
		return Record{}, false
	}
	return unpackRecord(buffer), true
}

// current generation for a fetch about to start
func (c *Cache) currentGeneration() uint64 {
	c.RLock()
	defer c.RUnlock()
	return c.generation
}

// overwrite a balance record
//
// the record is stored even when its owned part is negative, the
// violation is then reported and returned
func (c *Cache) putRecord(generation uint64, address common.Address, loc issuance.Location, r Record) error {
	c.RLock()
	defer c.RUnlock()

	if generation != c.generation {
		c.log.Debugf("discard stale balance: %s  address: %s", loc, address.Hex())
		return nil
	}

	c.store.Balances.Put(balanceKey(address, loc), r.pack())
	c.log.Debugf("balance: %s  address: %s  balance: %d  borrowed: %d", loc, address.Hex(), r.Balance, r.Borrowed)

	c.bus.Send(messagebus.Message{
		Kind:     messagebus.BalanceChanged,
		Location: loc,
		Address:  address,
	})

	if r.Owned() < 0 {
		return fault.Invariant(
			fault.ErrNegativeOwnedBalance,
			"location: %s  address: %s  balance: %d  borrowed: %d",
			loc, address.Hex(), r.Balance, r.Borrowed,
		)
	}
	return nil
}

// overwrite a reclaim record
func (c *Cache) putReclaimable(generation uint64, reclaimer common.Address, loc issuance.Location, owner common.Address, amount int64) bool {
	c.RLock()
	defer c.RUnlock()

	if generation != c.generation {
		c.log.Debugf("discard stale reclaimable: %s  reclaimer: %s", loc, reclaimer.Hex())
		return false
	}

	c.store.Reclaimable.PutN(reclaimKey(reclaimer, loc, owner), amount)
	c.log.Debugf("reclaimable: %s  reclaimer: %s  owner: %s  amount: %d", loc, reclaimer.Hex(), owner.Hex(), amount)

	c.bus.Send(messagebus.Message{
		Kind:     messagebus.ReclaimableChanged,
		Location: loc,
		Address:  reclaimer,
		Owner:    owner,
	})
	return true
}

// remember that all reclaim origins of reclaimer were fetched
func (c *Cache) markScanned(generation uint64, reclaimer common.Address, loc issuance.Location) {
	c.RLock()
	defer c.RUnlock()

	if generation != c.generation {
		return
	}
	c.store.ReclaimScan.Put(scanKey(reclaimer, loc), []byte{})
}

// Revoked - true if the issuance was seen revoked
func (c *Cache) Revoked(loc issuance.Location) bool {
	return c.store.Revoked.Has(loc.Bytes())
}

// SetRevoked - mark an issuance revoked, balances are kept
func (c *Cache) SetRevoked(loc issuance.Location) {
	c.RLock()
	defer c.RUnlock()

	c.store.Revoked.Put(loc.Bytes(), []byte{})
	c.log.Infof("revoked: %s", loc)

	c.bus.Send(messagebus.Message{
		Kind:     messagebus.RevokedChanged,
		Location: loc,
	})
}

// Clear - drop every record
//
// fetches already in progress are discarded when they complete
func (c *Cache) Clear() {
	c.Lock()
	defer c.Unlock()

	c.generation += 1

	c.store.Balances.Clear()
	c.store.Reclaimable.Clear()
	c.store.ReclaimScan.Clear()
	c.store.Revoked.Clear()

	c.log.Info("cleared")

	c.bus.Send(messagebus.Message{
		Kind: messagebus.Cleared,
	})
}
