// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/lobwallet/balance"
	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger/mocks"
	"github.com/bitmark-inc/lobwallet/ledger/simulated"
	"github.com/bitmark-inc/lobwallet/messagebus"
	"github.com/bitmark-inc/lobwallet/storage"
	"github.com/bitmark-inc/lobwallet/watcher"
	"github.com/bitmark-inc/logger"
)

const (
	dir     = "testing"
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	root  = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c0")
)

func TestMain(m *testing.M) {
	_ = os.RemoveAll(dir)
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	rc := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(dir)
	os.Exit(rc)
}

type fixture struct {
	ledger   *simulated.Ledger
	contract common.Address
	cache    *balance.Cache
	bus      *messagebus.Bus
	watcher  *watcher.Watcher
}

func setup(t *testing.T) *fixture {
	store, err := storage.Open("")
	require.Nil(t, err, "open store")
	t.Cleanup(store.Close)

	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	bus := messagebus.New()
	cache := balance.New(store, l, nil, bus)
	w := watcher.New(cache, l, history.New(l, time.Minute), []common.Address{alice, bob})
	t.Cleanup(w.StopAll)

	return &fixture{
		ledger:   l,
		contract: contract,
		cache:    cache,
		bus:      bus,
		watcher:  w,
	}
}

func TestEventsUpdateCache(t *testing.T) {
	f := setup(t)
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "watch")

	id, _, err := f.ledger.Issue(f.contract, alice, 100)
	require.Nil(t, err, "issue")
	loc := issuance.New(f.contract, id)

	assert.Eventually(t, func() bool {
		return 1 == len(f.cache.NonZeroBalanceLocations(alice))
	}, waitFor, tick, "issuance not seen")

	_, err = f.ledger.TransferAndAllowReclaim(f.contract, id, alice, bob, 20)
	require.Nil(t, err, "lend")

	assert.Eventually(t, func() bool {
		locations := f.cache.ReclaimableLocations(alice)
		return 1 == len(locations) && loc == locations[0]
	}, waitFor, tick, "lending not seen")
	assert.Eventually(t, func() bool {
		return 1 == len(f.cache.NonZeroBalanceLocations(bob))
	}, waitFor, tick, "bob balance not seen")

	_, err = f.ledger.Reclaim(f.contract, id, alice, bob, 20)
	require.Nil(t, err, "reclaim")

	assert.Eventually(t, func() bool {
		return 0 == len(f.cache.ReclaimableLocations(alice)) &&
			0 == len(f.cache.NonZeroBalanceLocations(bob))
	}, waitFor, tick, "reclaim not seen")

	ctx := context.Background()
	n, err := f.cache.Balance(ctx, loc, alice)
	require.Nil(t, err, "balance")
	assert.Equal(t, int64(100), n, "wrong final balance")

	_, err = f.ledger.Revoke(f.contract, id)
	require.Nil(t, err, "revoke")

	assert.Eventually(t, func() bool {
		return f.cache.Revoked(loc)
	}, waitFor, tick, "revoke not seen")

	assert.Equal(t, uint64(0), f.watcher.Dropped(), "updates dropped")
}

func TestUnwatchedAddressesAreIgnored(t *testing.T) {
	f := setup(t)
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "watch")

	id, _, err := f.ledger.Issue(f.contract, carol, 10)
	require.Nil(t, err, "issue")
	_, err = f.ledger.Revoke(f.contract, id)
	require.Nil(t, err, "revoke")

	assert.Eventually(t, func() bool {
		return f.cache.Revoked(issuance.New(f.contract, id))
	}, waitFor, tick, "revoke not seen")

	assert.Equal(t, 0, len(f.cache.NonZeroBalanceLocations(carol)), "unwatched address cached")
}

func TestStopIsFinal(t *testing.T) {
	f := setup(t)
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "watch")
	assert.True(t, f.watcher.Watching(f.contract), "not watching")
	assert.Equal(t, fault.ErrWatcherAlreadyRunning, f.watcher.Watch(context.Background(), f.contract, 0), "second watch")

	f.watcher.Stop(f.contract)
	f.watcher.Stop(f.contract)
	f.watcher.StopAll()

	assert.False(t, f.watcher.Watching(f.contract), "still watching")
	assert.Equal(t, 0, f.ledger.Subscribers(), "subscriptions left open")

	// drain anything written before the stop
	for len(f.bus.Chan()) > 0 {
		<-f.bus.Chan()
	}

	_, _, err := f.ledger.Issue(f.contract, alice, 10)
	require.Nil(t, err, "issue")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, len(f.bus.Chan()), "cache written after stop")
	assert.Equal(t, 0, len(f.cache.NonZeroBalanceLocations(alice)), "cache written after stop")
}

func TestSubscriptionErrorEndsWatch(t *testing.T) {
	f := setup(t)
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "watch")

	f.ledger.Break(errors.New("websocket closed"))

	assert.Eventually(t, func() bool {
		return !f.watcher.Watching(f.contract)
	}, waitFor, tick, "watch survived subscription error")
	assert.Eventually(t, func() bool {
		return 0 == f.ledger.Subscribers()
	}, waitFor, tick, "subscriptions left open")

	// can be watched again
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "rewatch")
}

func TestContextEndsWatch(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.Nil(t, f.watcher.Watch(ctx, f.contract, 0), "watch")

	cancel()

	assert.Eventually(t, func() bool {
		return !f.watcher.Watching(f.contract)
	}, waitFor, tick, "watch survived context")
}

func TestHandlerFailureIsDropped(t *testing.T) {
	f := setup(t)
	require.Nil(t, f.watcher.Watch(context.Background(), f.contract, 0), "watch")

	f.ledger.Fail(errors.New("rate limited"))
	id, _, err := f.ledger.Issue(f.contract, alice, 10)
	require.Nil(t, err, "issue")

	assert.Eventually(t, func() bool {
		return f.watcher.Dropped() > 0
	}, waitFor, tick, "failure not counted")
	assert.True(t, f.watcher.Watching(f.contract), "watch ended by handler failure")

	// later events are still handled
	f.ledger.Fail(nil)
	_, err = f.ledger.Transfer(f.contract, id, alice, bob, 4)
	require.Nil(t, err, "transfer")

	assert.Eventually(t, func() bool {
		return 1 == len(f.cache.NonZeroBalanceLocations(bob))
	}, waitFor, tick, "later event not handled")
}

func TestSubscribeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store, err := storage.Open("")
	require.Nil(t, err, "open store")
	defer store.Close()

	cause := errors.New("dial tcp: connection refused")
	contract := common.HexToAddress("0x1c")

	client := mocks.NewMockClient(ctrl)
	first := mocks.NewMockSubscription(ctrl)
	first.EXPECT().Unsubscribe().Times(1)

	gomock.InOrder(
		client.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(first, nil),
		client.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(nil, cause),
	)

	w := watcher.New(balance.New(store, client, nil, nil), client, nil, []common.Address{alice})

	err = w.Watch(context.Background(), contract, 0)
	assert.True(t, fault.IsErrLedgerQuery(err), "wrong error: %v", err)
	assert.False(t, w.Watching(contract), "failed watch registered")
}
