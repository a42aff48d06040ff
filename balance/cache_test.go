// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance_test

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
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger/mocks"
	"github.com/bitmark-inc/lobwallet/ledger/simulated"
	"github.com/bitmark-inc/lobwallet/messagebus"
)

type snapshot struct {
	aliceBalance  int64
	aliceOwned    int64
	bobBalance    int64
	bobOwned      int64
	bobBorrowed   int64
	reclaimable   int64
	nonZero       []issuance.Location
	reclaimLocs   []issuance.Location
	reclaimOrigin []common.Address
}

func take(t *testing.T, c interface {
	Balance(context.Context, issuance.Location, ...common.Address) (int64, error)
	OwnedBalance(context.Context, issuance.Location, ...common.Address) (int64, error)
	BorrowedBalance(context.Context, issuance.Location, ...common.Address) (int64, error)
	ReclaimableBalance(context.Context, issuance.Location, ...common.Address) (int64, error)
	NonZeroBalanceLocations(...common.Address) []issuance.Location
	ReclaimableLocations(...common.Address) []issuance.Location
	ReclaimOrigins(issuance.Location, ...common.Address) []common.Address
}, loc issuance.Location) snapshot {
	ctx := context.Background()
	var s snapshot
	var err error

	s.aliceBalance, err = c.Balance(ctx, loc, alice)
	require.Nil(t, err)
	s.aliceOwned, err = c.OwnedBalance(ctx, loc, alice)
	require.Nil(t, err)
	s.bobBalance, err = c.Balance(ctx, loc, bob)
	require.Nil(t, err)
	s.bobOwned, err = c.OwnedBalance(ctx, loc, bob)
	require.Nil(t, err)
	s.bobBorrowed, err = c.BorrowedBalance(ctx, loc, bob)
	require.Nil(t, err)
	s.reclaimable, err = c.ReclaimableBalance(ctx, loc, alice)
	require.Nil(t, err)
	s.nonZero = c.NonZeroBalanceLocations(alice, bob)
	s.reclaimLocs = c.ReclaimableLocations(alice)
	s.reclaimOrigin = c.ReclaimOrigins(loc, alice)
	return s
}

func TestBulkRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 100)
	require.Nil(t, err, "issue error")
	_, err = l.TransferAndAllowReclaim(contract, id, alice, bob, 20)
	require.Nil(t, err, "lend error")
	loc := issuance.New(contract, id)

	c, _ := newCache(t, l, nil)
	addresses := []common.Address{alice, bob}

	err = c.UpdateAllRelevantBalancesForLicenseContract(ctx, contract, addresses)
	require.Nil(t, err, "first refresh")
	first := take(t, c, loc)

	err = c.UpdateAllRelevantBalancesForLicenseContract(ctx, contract, addresses)
	require.Nil(t, err, "second refresh")
	second := take(t, c, loc)

	assert.Equal(t, first, second, "refresh not idempotent")

	assert.Equal(t, int64(80), first.aliceBalance, "wrong alice balance")
	assert.Equal(t, int64(80), first.aliceOwned, "wrong alice owned")
	assert.Equal(t, int64(20), first.bobBalance, "wrong bob balance")
	assert.Equal(t, int64(0), first.bobOwned, "wrong bob owned")
	assert.Equal(t, int64(20), first.bobBorrowed, "wrong bob borrowed")
	assert.Equal(t, int64(20), first.reclaimable, "wrong reclaimable")
	assert.Equal(t, []issuance.Location{loc}, first.nonZero, "wrong non zero locations")
	assert.Equal(t, []issuance.Location{loc}, first.reclaimLocs, "wrong reclaimable locations")
	assert.Equal(t, []common.Address{bob}, first.reclaimOrigin, "wrong origins")
}

func TestReclaimExclusivity(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 100)
	require.Nil(t, err, "issue error")
	_, err = l.TransferAndAllowReclaim(contract, id, alice, bob, 20)
	require.Nil(t, err, "lend error")
	loc := issuance.New(contract, id)

	c, _ := newCache(t, l, nil)

	n, err := c.ReclaimableBalanceFrom(ctx, loc, []common.Address{alice}, bob)
	require.Nil(t, err, "reclaimable from")
	assert.Equal(t, int64(20), n, "wrong reclaimable from bob")

	n, err = c.ReclaimableBalance(ctx, loc, alice)
	require.Nil(t, err, "reclaimable")
	assert.Equal(t, int64(20), n, "wrong reclaimable")
	assert.Equal(t, []issuance.Location{loc}, c.ReclaimableLocations(alice), "location missing")

	_, err = l.Reclaim(contract, id, alice, bob, 20)
	require.Nil(t, err, "reclaim error")

	err = c.RefreshReclaimableFrom(ctx, loc, alice, bob)
	require.Nil(t, err, "refresh")

	n, err = c.ReclaimableBalance(ctx, loc, alice)
	require.Nil(t, err, "reclaimable")
	assert.Equal(t, int64(0), n, "reclaimable after full reclaim")
	assert.Equal(t, 0, len(c.ReclaimableLocations(alice)), "location still listed")
	assert.Equal(t, 0, len(c.ReclaimOrigins(loc, alice)), "origin still listed")
}

func TestRepeatedAddressCountedOnce(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 100)
	require.Nil(t, err, "issue error")
	_, err = l.TransferAndAllowReclaim(contract, id, alice, bob, 20)
	require.Nil(t, err, "lend error")
	loc := issuance.New(contract, id)

	c, _ := newCache(t, l, nil)

	n, err := c.Balance(ctx, loc, alice, bob, alice)
	require.Nil(t, err, "balance")
	assert.Equal(t, int64(100), n, "wrong balance")

	n, err = c.OwnedBalance(ctx, loc, alice, alice, bob)
	require.Nil(t, err, "owned")
	assert.Equal(t, int64(80), n, "wrong owned")

	n, err = c.BorrowedBalance(ctx, loc, bob, bob)
	require.Nil(t, err, "borrowed")
	assert.Equal(t, int64(20), n, "wrong borrowed")

	n, err = c.ReclaimableBalance(ctx, loc, alice, alice)
	require.Nil(t, err, "reclaimable")
	assert.Equal(t, int64(20), n, "wrong reclaimable")

	n, err = c.ReclaimableBalanceFrom(ctx, loc, []common.Address{alice, alice}, bob)
	require.Nil(t, err, "reclaimable from")
	assert.Equal(t, int64(20), n, "wrong reclaimable from bob")
}

func TestNegativeOwnedIsStoredAndReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contract := common.HexToAddress("0x1c")
	loc := issuance.New(contract, 2)

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Balance(gomock.Any(), contract, uint64(2), bob).Return(int64(5), nil).Times(1)
	client.EXPECT().ReclaimableBalance(gomock.Any(), contract, uint64(2), bob).Return(int64(10), nil).Times(1)

	c, _ := newCache(t, client, nil)

	err := c.RefreshBalance(ctx, loc, bob)
	assert.True(t, fault.IsErrInvariant(err), "violation not reported: %v", err)
	assert.True(t, errors.Is(err, fault.ErrNegativeOwnedBalance), "wrong violation: %v", err)

	// served from the store without another fetch
	owned, err := c.OwnedBalance(ctx, loc, bob)
	require.Nil(t, err, "owned balance")
	assert.Equal(t, int64(-5), owned, "record was clamped")
}

func TestLedgerFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contract := common.HexToAddress("0x1c")
	cause := errors.New("gateway timeout")

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().RelevantIssuancesCount(gomock.Any(), contract, alice).Return(uint64(0), cause).Times(1)
	client.EXPECT().Balance(gomock.Any(), contract, uint64(0), alice).Return(int64(0), cause).Times(1)

	c, _ := newCache(t, client, nil)

	err := c.UpdateAllRelevantBalancesForLicenseContract(ctx, contract, []common.Address{alice})
	assert.True(t, fault.IsErrLedgerQuery(err), "wrong error: %v", err)
	assert.True(t, errors.Is(err, cause), "cause lost: %v", err)

	_, err = c.Balance(ctx, issuance.New(contract, 0), alice)
	assert.True(t, fault.IsErrLedgerQuery(err), "wrong error: %v", err)
	assert.Equal(t, 0, len(c.NonZeroBalanceLocations(alice)), "failed fetch stored a record")
}

func TestMissFetchesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	contract := common.HexToAddress("0x1c")
	loc := issuance.New(contract, 7)

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		Balance(gomock.Any(), contract, uint64(7), alice).
		DoAndReturn(func(context.Context, common.Address, uint64, common.Address) (int64, error) {
			time.Sleep(50 * time.Millisecond)
			return 12, nil
		}).
		Times(1)
	client.EXPECT().ReclaimableBalance(gomock.Any(), contract, uint64(7), alice).Return(int64(0), nil).Times(1)

	c, _ := newCache(t, client, nil)

	const readers = 5
	results := make([]int64, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i += 1 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := c.Balance(ctx, loc, alice)
			assert.Nil(t, err, "balance error")
			results[i] = n
		}(i)
	}
	wg.Wait()

	for i, n := range results {
		assert.Equal(t, int64(12), n, "reader %d: wrong balance", i)
	}
}

func TestPendingDeltaIsApplied(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 50)
	require.Nil(t, err, "issue error")
	loc := issuance.New(contract, id)

	pending := &fakePending{balance: -20}
	c, _ := newCache(t, l, pending)

	n, err := c.Balance(ctx, loc, alice)
	require.Nil(t, err, "balance")
	assert.Equal(t, int64(30), n, "pending delta not applied")

	n, err = c.OwnedBalance(ctx, loc, alice)
	require.Nil(t, err, "owned")
	assert.Equal(t, int64(30), n, "pending delta not applied to owned")

	// only confirmed records are listed
	pending.balance = -50
	assert.Equal(t, []issuance.Location{loc}, c.NonZeroBalanceLocations(alice), "pending affected listing")
}

func TestWritesAreNotified(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 10)
	require.Nil(t, err, "issue error")
	loc := issuance.New(contract, id)

	c, bus := newCache(t, l, nil)

	require.Nil(t, c.RefreshBalance(ctx, loc, alice), "refresh")
	c.SetRevoked(loc)
	c.Clear()

	expected := []messagebus.Message{
		{Kind: messagebus.BalanceChanged, Location: loc, Address: alice},
		{Kind: messagebus.RevokedChanged, Location: loc},
		{Kind: messagebus.Cleared},
	}
	for i, e := range expected {
		select {
		case m := <-bus.Chan():
			assert.Equal(t, e, m, "message %d", i)
		default:
			t.Fatalf("message %d missing", i)
		}
	}
}

func TestRevokedAndClear(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 10)
	require.Nil(t, err, "issue error")
	loc := issuance.New(contract, id)

	c, _ := newCache(t, l, nil)
	require.Nil(t, c.UpdateRelevantBalancesForIssuance(ctx, loc, []common.Address{alice, carol}), "refresh")

	assert.False(t, c.Revoked(loc), "revoked too early")
	c.SetRevoked(loc)
	assert.True(t, c.Revoked(loc), "not revoked")

	// balances are kept after revoke
	assert.Equal(t, []issuance.Location{loc}, c.NonZeroBalanceLocations(alice, carol), "balance dropped by revoke")

	c.Clear()
	assert.False(t, c.Revoked(loc), "revoke survived clear")
	assert.Equal(t, 0, len(c.NonZeroBalanceLocations(alice)), "balance survived clear")
}
