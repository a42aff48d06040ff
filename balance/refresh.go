// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
)

// RefreshBalance - fetch balance and borrowed balance of an address and
// overwrite the cached record
func (c *Cache) RefreshBalance(ctx context.Context, loc issuance.Location, address common.Address) error {
	generation := c.currentGeneration()

	balance, err := c.client.Balance(ctx, loc.LicenseContract, loc.IssuanceID, address)
	if nil != err {
		return fault.LedgerQuery("balance", err)
	}
	borrowed, err := c.client.ReclaimableBalance(ctx, loc.LicenseContract, loc.IssuanceID, address)
	if nil != err {
		return fault.LedgerQuery("reclaimableBalance", err)
	}

	return c.putRecord(generation, address, loc, Record{
		Balance:  balance,
		Borrowed: borrowed,
	})
}

// RefreshReclaimableFrom - fetch the amount reclaimer may reclaim from
// currentOwner and overwrite the cached record
func (c *Cache) RefreshReclaimableFrom(ctx context.Context, loc issuance.Location, reclaimer common.Address, currentOwner common.Address) error {
	generation := c.currentGeneration()

	amount, err := c.client.ReclaimableBalanceBy(ctx, loc.LicenseContract, loc.IssuanceID, currentOwner, reclaimer)
	if nil != err {
		return fault.LedgerQuery("reclaimableBalanceBy", err)
	}
	c.putReclaimable(generation, reclaimer, loc, currentOwner, amount)
	return nil
}

// RefreshReclaimable - enumerate every address reclaimer lent units of the
// issuance to and refresh each reclaim record
func (c *Cache) RefreshReclaimable(ctx context.Context, loc issuance.Location, reclaimer common.Address) error {
	generation := c.currentGeneration()

	count, err := c.client.AddressesLicensesCanBeReclaimedFromCount(ctx, loc.LicenseContract, loc.IssuanceID, reclaimer)
	if nil != err {
		return fault.LedgerQuery("addressesLicensesCanBeReclaimedFromCount", err)
	}

	for i := uint64(0); i < count; i += 1 {
		owner, err := c.client.AddressesLicensesCanBeReclaimedFrom(ctx, loc.LicenseContract, loc.IssuanceID, reclaimer, i)
		if nil != err {
			return fault.LedgerQuery("addressesLicensesCanBeReclaimedFrom", err)
		}
		err = c.RefreshReclaimableFrom(ctx, loc, reclaimer, owner)
		if nil != err {
			return err
		}
	}

	c.markScanned(generation, reclaimer, loc)
	return nil
}

// UpdateRelevantBalancesForIssuance - refresh balance and reclaim records
// of each address for one issuance
//
// ledger failures stop the refresh, a negative owned balance is stored,
// reported, and the refresh continues
func (c *Cache) UpdateRelevantBalancesForIssuance(ctx context.Context, loc issuance.Location, addresses []common.Address) error {
	var violation error
	for _, address := range addresses {
		err := c.refreshAddress(ctx, loc, address)
		if fault.IsErrInvariant(err) {
			if nil == violation {
				violation = err
			}
		} else if nil != err {
			return err
		}
	}
	return violation
}

// UpdateAllRelevantBalancesForLicenseContract - refresh every issuance of
// the contract that the ledger lists as relevant to each address
//
// only overwrites records so running it twice gives the same result
func (c *Cache) UpdateAllRelevantBalancesForLicenseContract(ctx context.Context, contract common.Address, addresses []common.Address) error {
	if 0 == len(addresses) {
		return nil
	}

	c.log.Infof("refresh contract: %s  addresses: %d", contract.Hex(), len(addresses))

	var violation error
	for _, address := range addresses {
		count, err := c.client.RelevantIssuancesCount(ctx, contract, address)
		if nil != err {
			return fault.LedgerQuery("relevantIssuancesCount", err)
		}

		for i := uint64(0); i < count; i += 1 {
			id, err := c.client.RelevantIssuances(ctx, contract, address, i)
			if nil != err {
				return fault.LedgerQuery("relevantIssuances", err)
			}

			err = c.refreshAddress(ctx, issuance.New(contract, id), address)
			if fault.IsErrInvariant(err) {
				if nil == violation {
					violation = err
				}
			} else if nil != err {
				return err
			}
		}
	}
	return violation
}

// balance then reclaim records of one address
func (c *Cache) refreshAddress(ctx context.Context, loc issuance.Location, address common.Address) error {
	violation := c.RefreshBalance(ctx, loc, address)
	if nil != violation && !fault.IsErrInvariant(violation) {
		return violation
	}
	err := c.RefreshReclaimable(ctx, loc, address)
	if nil != err {
		return err
	}
	return violation
}
