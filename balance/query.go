// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance

import (
	"bytes"
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/storage"
)

// Balance - units held by the addresses, borrowed units included, with
// the pending delta applied
func (c *Cache) Balance(ctx context.Context, loc issuance.Location, addresses ...common.Address) (int64, error) {
	addresses = unique(addresses)
	total := int64(0)
	for _, address := range addresses {
		r, err := c.lookup(ctx, loc, address)
		if nil != err {
			return 0, err
		}
		total += r.Balance
	}
	return total + c.pending.PendingBalanceChange(loc, addresses), nil
}

// OwnedBalance - units held by the addresses that are not borrowed, with
// the pending delta applied
func (c *Cache) OwnedBalance(ctx context.Context, loc issuance.Location, addresses ...common.Address) (int64, error) {
	addresses = unique(addresses)
	total := int64(0)
	for _, address := range addresses {
		r, err := c.lookup(ctx, loc, address)
		if nil != err {
			return 0, err
		}
		total += r.Owned()
	}
	return total + c.pending.PendingBalanceChange(loc, addresses), nil
}

// BorrowedBalance - units held by the addresses that others may reclaim
func (c *Cache) BorrowedBalance(ctx context.Context, loc issuance.Location, addresses ...common.Address) (int64, error) {
	addresses = unique(addresses)
	total := int64(0)
	for _, address := range addresses {
		r, err := c.lookup(ctx, loc, address)
		if nil != err {
			return 0, err
		}
		total += r.Borrowed
	}
	return total, nil
}

// ReclaimableBalance - units the reclaimers may reclaim from anyone, with
// the pending delta applied
func (c *Cache) ReclaimableBalance(ctx context.Context, loc issuance.Location, reclaimers ...common.Address) (int64, error) {
	reclaimers = unique(reclaimers)
	total := int64(0)
	for _, reclaimer := range reclaimers {
		err := c.ensureScanned(ctx, loc, reclaimer)
		if nil != err {
			return 0, err
		}

		err = c.store.Reclaimable.PrefixMap(scanKey(reclaimer, loc), func(key []byte, value []byte) error {
			total += storage.DecodeN(value)
			return nil
		})
		if nil != err {
			return 0, err
		}
	}
	return total + c.pending.PendingReclaimableBalance(loc, reclaimers), nil
}

// ReclaimableBalanceFrom - units the reclaimers may reclaim from one
// current owner, with the pending delta applied
func (c *Cache) ReclaimableBalanceFrom(ctx context.Context, loc issuance.Location, reclaimers []common.Address, currentOwner common.Address) (int64, error) {
	reclaimers = unique(reclaimers)
	total := int64(0)
	for _, reclaimer := range reclaimers {
		key := reclaimKey(reclaimer, loc, currentOwner)
		n, ok := c.store.Reclaimable.GetN(key)
		if !ok {
			_, err, _ := c.misses.Do("R"+string(key), func() (interface{}, error) {
				return nil, c.RefreshReclaimableFrom(ctx, loc, reclaimer, currentOwner)
			})
			if nil != err {
				return 0, err
			}
			n, _ = c.store.Reclaimable.GetN(key)
		}
		total += n
	}
	return total + c.pending.PendingReclaimableBalanceFrom(loc, reclaimers, currentOwner), nil
}

// NonZeroBalanceLocations - issuances in which any of the addresses holds
// units
//
// only confirmed records are considered, pending transactions are not
func (c *Cache) NonZeroBalanceLocations(addresses ...common.Address) []issuance.Location {
	found := make(map[issuance.Location]struct{})
	for _, address := range addresses {
		_ = c.store.Balances.PrefixMap(address.Bytes(), func(key []byte, value []byte) error {
			if 0 == unpackRecord(value).Balance {
				return nil
			}
			loc, err := issuance.FromBytes(key[common.AddressLength:])
			if nil != err {
				c.log.Errorf("balance key: %x  error: %s", key, err)
				return nil
			}
			found[loc] = struct{}{}
			return nil
		})
	}
	return sortedLocations(found)
}

// ReclaimableLocations - issuances in which any of the addresses can
// reclaim a positive amount
func (c *Cache) ReclaimableLocations(reclaimers ...common.Address) []issuance.Location {
	found := make(map[issuance.Location]struct{})
	for _, reclaimer := range reclaimers {
		_ = c.store.Reclaimable.PrefixMap(reclaimer.Bytes(), func(key []byte, value []byte) error {
			if storage.DecodeN(value) <= 0 {
				return nil
			}
			start := common.AddressLength
			loc, err := issuance.FromBytes(key[start : start+issuance.PackedLength])
			if nil != err {
				c.log.Errorf("reclaim key: %x  error: %s", key, err)
				return nil
			}
			found[loc] = struct{}{}
			return nil
		})
	}
	return sortedLocations(found)
}

// ReclaimOrigins - current owners the reclaimers can reclaim a positive
// amount of the issuance from
func (c *Cache) ReclaimOrigins(loc issuance.Location, reclaimers ...common.Address) []common.Address {
	found := make(map[common.Address]struct{})
	for _, reclaimer := range reclaimers {
		_ = c.store.Reclaimable.PrefixMap(scanKey(reclaimer, loc), func(key []byte, value []byte) error {
			if storage.DecodeN(value) <= 0 {
				return nil
			}
			found[common.BytesToAddress(key[len(key)-common.AddressLength:])] = struct{}{}
			return nil
		})
	}

	origins := make([]common.Address, 0, len(found))
	for address := range found {
		origins = append(origins, address)
	}
	sort.Slice(origins, func(i, j int) bool {
		return bytes.Compare(origins[i].Bytes(), origins[j].Bytes()) < 0
	})
	return origins
}

// cached record or fetch it from the ledger
func (c *Cache) lookup(ctx context.Context, loc issuance.Location, address common.Address) (Record, error) {
	if r, ok := c.record(address, loc); ok {
		return r, nil
	}

	key := balanceKey(address, loc)
	_, err, _ := c.misses.Do("B"+string(key), func() (interface{}, error) {
		c.log.Debugf("miss: %s  address: %s", loc, address.Hex())
		return nil, c.RefreshBalance(ctx, loc, address)
	})

	// a negative owned balance is still answered from the stored record
	if nil != err && !fault.IsErrInvariant(err) {
		return Record{}, err
	}

	r, _ := c.record(address, loc)
	return r, nil
}

// fetch reclaim origins if never enumerated
func (c *Cache) ensureScanned(ctx context.Context, loc issuance.Location, reclaimer common.Address) error {
	key := scanKey(reclaimer, loc)
	if c.store.ReclaimScan.Has(key) {
		return nil
	}
	_, err, _ := c.misses.Do("S"+string(key), func() (interface{}, error) {
		return nil, c.RefreshReclaimable(ctx, loc, reclaimer)
	})
	return err
}

// each address once, first occurrence order kept
func unique(addresses []common.Address) []common.Address {
	seen := make(map[common.Address]struct{}, len(addresses))
	kept := make([]common.Address, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		kept = append(kept, a)
	}
	return kept
}

func sortedLocations(found map[issuance.Location]struct{}) []issuance.Location {
	locations := make([]issuance.Location, 0, len(found))
	for loc := range found {
		locations = append(locations, loc)
	}
	sort.Slice(locations, func(i, j int) bool {
		return bytes.Compare(locations[i].Bytes(), locations[j].Bytes()) < 0
	})
	return locations
}
