// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package history_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/lobwallet/ledger/mocks"
	"github.com/bitmark-inc/lobwallet/ledger/simulated"
)

func queryFor(kind ledger.EventKind, loc issuance.Location) ledger.Query {
	return ledger.Query{
		Kind:     kind,
		Contract: loc.LicenseContract,
	}.ForIssuance(loc.IssuanceID)
}

func TestFetchMergesAndOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loc := issuance.New(contract, 0)
	all := conservationEvents()

	// other issuance returned by a loose topic match
	stray := ledger.Event{Kind: ledger.Transfer, Contract: contract, IssuanceID: 9, From: alice, To: bob, Amount: 1, BlockNumber: 12}

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		FilterEvents(gomock.Any(), queryFor(ledger.Transfer, loc)).
		Return([]ledger.Event{all[3], stray, all[1], all[0]}, nil).
		Times(1)
	client.EXPECT().
		FilterEvents(gomock.Any(), queryFor(ledger.Reclaim, loc)).
		Return([]ledger.Event{all[2]}, nil).
		Times(1)

	f := history.New(client, time.Minute)

	events, err := f.GetLicenseTransfers(context.Background(), loc)
	require.Nil(t, err, "fetch error")
	assert.Equal(t, all, events, "wrong merged history")

	// second fetch is served from the cache
	events, err = f.GetLicenseTransfers(context.Background(), loc)
	require.Nil(t, err, "cached fetch error")
	assert.Equal(t, all, events, "wrong cached history")
}

func TestFetchFailureHasNoPartialResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loc := issuance.New(contract, 4)
	cause := errors.New("connection reset")

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		FilterEvents(gomock.Any(), queryFor(ledger.Transfer, loc)).
		Return(conservationEvents(), nil).
		Times(1)
	client.EXPECT().
		FilterEvents(gomock.Any(), queryFor(ledger.Reclaim, loc)).
		Return(nil, cause).
		Times(1)

	f := history.New(client, time.Minute)

	events, err := f.GetLicenseTransfers(context.Background(), loc)
	assert.Nil(t, events, "partial result returned")
	assert.True(t, fault.IsErrLedgerQuery(err), "wrong error class: %v", err)
	assert.True(t, errors.Is(err, cause), "cause lost: %v", err)
}

func TestFetchInvalidate(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	c, _ := l.CreateLicenseContract(alice)

	id, _, err := l.Issue(c, alice, 100)
	require.Nil(t, err, "issue error")
	loc := issuance.New(c, id)

	f := history.New(l, 0)

	events, err := f.GetLicenseTransfers(ctx, loc)
	require.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(events), "wrong event count")

	_, err = l.TransferAndAllowReclaim(c, id, alice, bob, 30)
	require.Nil(t, err, "transfer error")
	_, err = l.Reclaim(c, id, alice, bob, 10)
	require.Nil(t, err, "reclaim error")

	events, err = f.GetLicenseTransfers(ctx, loc)
	require.Nil(t, err, "fetch error")
	assert.Equal(t, 1, len(events), "cache not used")

	f.Invalidate(loc)

	events, err = f.GetLicenseTransfers(ctx, loc)
	require.Nil(t, err, "fetch error")
	require.Equal(t, 3, len(events), "wrong event count after invalidate")
	assert.Equal(t, ledger.Reclaim, events[2].Kind, "reclaim not last")

	snapshots := history.ComputeBalanceSnapshots(events)
	final := snapshots[len(snapshots)-1]
	assert.Equal(t, int64(80), final.Balances[alice], "wrong alice balance")
	assert.Equal(t, int64(20), final.Balances[bob], "wrong bob balance")
	assert.Equal(t, int64(100), final.Total(), "not conserved")
}

// a ledger where a transfer is mined while the first transfer query
// is in flight, and the watcher invalidates the history at that point
type minedDuringFetch struct {
	*simulated.Ledger

	once     sync.Once
	fetcher  *history.Fetcher
	contract common.Address
	id       uint64
	mined    error
}

func (m *minedDuringFetch) FilterEvents(ctx context.Context, query ledger.Query) ([]ledger.Event, error) {
	events, err := m.Ledger.FilterEvents(ctx, query)
	if ledger.Transfer == query.Kind {
		m.once.Do(func() {
			_, m.mined = m.Ledger.Transfer(m.contract, m.id, alice, bob, 40)
			m.fetcher.Invalidate(issuance.New(m.contract, m.id))
		})
	}
	return events, err
}

func TestFetchInvalidatedDuringFetchIsNotCached(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	c, _ := l.CreateLicenseContract(alice)

	id, _, err := l.Issue(c, alice, 100)
	require.Nil(t, err, "issue error")
	loc := issuance.New(c, id)

	client := &minedDuringFetch{
		Ledger:   l,
		contract: c,
		id:       id,
	}
	f := history.New(client, time.Hour)
	client.fetcher = f

	events, err := f.GetLicenseTransfers(ctx, loc)
	require.Nil(t, err, "fetch error")
	require.Nil(t, client.mined, "transfer error")
	assert.Equal(t, 1, len(events), "first fetch reads the earlier state")

	events, err = f.GetLicenseTransfers(ctx, loc)
	require.Nil(t, err, "fetch error")
	assert.Equal(t, 2, len(events), "stale history was cached")

	snapshots := history.ComputeBalanceSnapshots(events)
	final := snapshots[len(snapshots)-1]
	assert.Equal(t, int64(60), final.Balances[alice], "wrong alice balance")
	assert.Equal(t, int64(40), final.Balances[bob], "wrong bob balance")
}
