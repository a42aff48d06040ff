// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/logger"
)

// DefaultExpiry - how long a fetched history is kept when not invalidated
const DefaultExpiry = 10 * time.Minute

// Fetcher - reads event logs for an issuance
//
// generation changes on every Invalidate and Flush, a fetch that
// started in an older generation is returned but not cached
type Fetcher struct {
	sync.Mutex

	client     ledger.Client
	history    *cache.Cache
	generation uint64
	log        *logger.L
}

// New - create a fetcher
//
// expiry of zero selects DefaultExpiry
func New(client ledger.Client, expiry time.Duration) *Fetcher {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Fetcher{
		client:  client,
		history: cache.New(expiry, 2*expiry),
		log:     logger.New("history"),
	}
}

// GetLicenseTransfers - all Transfer and Reclaim events of an issuance
// in ledger order
//
// any failed range query fails the whole fetch with a ledger error
func (f *Fetcher) GetLicenseTransfers(ctx context.Context, loc issuance.Location) ([]ledger.Event, error) {

	key := loc.String()
	if cached, ok := f.history.Get(key); ok {
		f.log.Debugf("history cache hit: %s", key)
		return copyEvents(cached.([]ledger.Event)), nil
	}

	generation := f.currentGeneration()

	kinds := []ledger.EventKind{ledger.Transfer, ledger.Reclaim}
	results := make([][]ledger.Event, len(kinds))

	g, gCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i := i
		query := ledger.Query{
			Kind:      kind,
			Contract:  loc.LicenseContract,
			FromBlock: 0,
		}.ForIssuance(loc.IssuanceID)

		g.Go(func() error {
			events, err := f.client.FilterEvents(gCtx, query)
			if nil != err {
				return fault.LedgerQuery("GetLicenseTransfers "+query.Kind.String(), err)
			}
			results[i] = keepMatching(&query, events)
			return nil
		})
	}

	if err := g.Wait(); nil != err {
		f.log.Warnf("history fetch: %s  error: %s", key, err)
		return nil, err
	}

	all := make([]ledger.Event, 0, len(results[0])+len(results[1]))
	for _, r := range results {
		all = append(all, r...)
	}
	Sort(all)

	f.log.Debugf("history fetched: %s  events: %d", key, len(all))

	f.Lock()
	if generation == f.generation {
		f.history.Set(key, all, cache.DefaultExpiration)
	} else {
		f.log.Debugf("history invalidated during fetch: %s", key)
	}
	f.Unlock()

	return copyEvents(all), nil
}

// Invalidate - drop a cached history so the next fetch reads the ledger
func (f *Fetcher) Invalidate(loc issuance.Location) {
	f.Lock()
	f.generation += 1
	f.history.Delete(loc.String())
	f.Unlock()
}

// Flush - drop all cached histories
func (f *Fetcher) Flush() {
	f.Lock()
	f.generation += 1
	f.history.Flush()
	f.Unlock()
}

func (f *Fetcher) currentGeneration() uint64 {
	f.Lock()
	defer f.Unlock()
	return f.generation
}

// Sort - order events by block number then transaction index
//
// events in the same position keep their relative order
func Sort(events []ledger.Event) {
	ledger.SortEvents(events)
}

// the ledger may return extra events from a topic match
func keepMatching(query *ledger.Query, events []ledger.Event) []ledger.Event {
	kept := make([]ledger.Event, 0, len(events))
	for i := range events {
		if query.Matches(&events[i]) {
			kept = append(kept, events[i])
		}
	}
	return kept
}

func copyEvents(events []ledger.Event) []ledger.Event {
	c := make([]ledger.Event, len(events))
	copy(c, events)
	return c
}
