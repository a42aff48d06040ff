// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package contract - ledger client for license contracts deployed on
// an ethereum node
package contract

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/logger"
)

// Backend - the node operations used
//
// satisfied by *ethclient.Client
type Backend interface {
	bind.ContractCaller
	bind.ContractFilterer
}

// DefaultRateLimit - calls per second when none is configured
const DefaultRateLimit = 20

// Client - ledger.Client over a node connection
type Client struct {
	log     *logger.L
	backend Backend
	abi     abi.ABI
	limiter *rate.Limiter
}

// ensure the interface is satisfied
var _ ledger.Client = (*Client)(nil)

// Dial - connect to a node
//
// url may be http(s), ws(s) or an IPC path, subscriptions need ws or IPC
func Dial(ctx context.Context, url string, callsPerSecond float64) (*Client, error) {
	backend, err := ethclient.DialContext(ctx, url)
	if nil != err {
		return nil, fault.LedgerQuery("dial", err)
	}
	return New(backend, callsPerSecond)
}

// New - client over an existing backend
//
// callsPerSecond of zero selects DefaultRateLimit
func New(backend Backend, callsPerSecond float64) (*Client, error) {
	log := logger.New("ledger")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	parsed, err := abi.JSON(strings.NewReader(licenseContractABI))
	if nil != err {
		return nil, err
	}

	if callsPerSecond <= 0 {
		callsPerSecond = DefaultRateLimit
	}
	burst := int(callsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		log:     log,
		backend: backend,
		abi:     parsed,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst),
	}, nil
}

func (c *Client) bound(contract common.Address) *bind.BoundContract {
	return bind.NewBoundContract(contract, c.abi, c.backend, nil, c.backend)
}

// call a view function returning one value
func (c *Client) call(ctx context.Context, contract common.Address, method string, args ...interface{}) (interface{}, error) {
	if err := c.limiter.Wait(ctx); nil != err {
		return nil, fault.LedgerQuery(method, err)
	}

	var out []interface{}
	err := c.bound(contract).Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	if nil != err {
		c.log.Debugf("call: %s  contract: %s  error: %s", method, contract.Hex(), err)
		return nil, fault.LedgerQuery(method, err)
	}
	if 0 == len(out) {
		return nil, fault.LedgerQuery(method, fault.ErrValueOutOfRange)
	}
	return out[0], nil
}

func (c *Client) callAmount(ctx context.Context, contract common.Address, method string, args ...interface{}) (int64, error) {
	out, err := c.call(ctx, contract, method, args...)
	if nil != err {
		return 0, err
	}
	n := abi.ConvertType(out, new(big.Int)).(*big.Int)
	if !n.IsInt64() {
		return 0, fault.LedgerQuery(method, fault.ErrValueOutOfRange)
	}
	return n.Int64(), nil
}

func (c *Client) callCount(ctx context.Context, contract common.Address, method string, args ...interface{}) (uint64, error) {
	out, err := c.call(ctx, contract, method, args...)
	if nil != err {
		return 0, err
	}
	n := abi.ConvertType(out, new(big.Int)).(*big.Int)
	if !n.IsUint64() {
		return 0, fault.LedgerQuery(method, fault.ErrValueOutOfRange)
	}
	return n.Uint64(), nil
}

func bigID(issuanceID uint64) *big.Int {
	return new(big.Int).SetUint64(issuanceID)
}

// Balance - see ledger.Client
func (c *Client) Balance(ctx context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error) {
	return c.callAmount(ctx, contract, "balance", bigID(issuanceID), owner)
}

// ReclaimableBalance - see ledger.Client
func (c *Client) ReclaimableBalance(ctx context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error) {
	return c.callAmount(ctx, contract, "reclaimableBalance", bigID(issuanceID), owner)
}

// ReclaimableBalanceBy - see ledger.Client
func (c *Client) ReclaimableBalanceBy(ctx context.Context, contract common.Address, issuanceID uint64, currentOwner common.Address, reclaimer common.Address) (int64, error) {
	return c.callAmount(ctx, contract, "reclaimableBalanceBy", bigID(issuanceID), currentOwner, reclaimer)
}

// RelevantIssuancesCount - see ledger.Client
func (c *Client) RelevantIssuancesCount(ctx context.Context, contract common.Address, owner common.Address) (uint64, error) {
	return c.callCount(ctx, contract, "relevantIssuancesCount", owner)
}

// RelevantIssuances - see ledger.Client
func (c *Client) RelevantIssuances(ctx context.Context, contract common.Address, owner common.Address, index uint64) (uint64, error) {
	return c.callCount(ctx, contract, "relevantIssuances", owner, new(big.Int).SetUint64(index))
}

// AddressesLicensesCanBeReclaimedFromCount - see ledger.Client
func (c *Client) AddressesLicensesCanBeReclaimedFromCount(ctx context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address) (uint64, error) {
	return c.callCount(ctx, contract, "addressesLicensesCanBeReclaimedFromCount", bigID(issuanceID), reclaimer)
}

// AddressesLicensesCanBeReclaimedFrom - see ledger.Client
func (c *Client) AddressesLicensesCanBeReclaimedFrom(ctx context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address, index uint64) (common.Address, error) {
	out, err := c.call(ctx, contract, "addressesLicensesCanBeReclaimedFrom", bigID(issuanceID), reclaimer, new(big.Int).SetUint64(index))
	if nil != err {
		return common.Address{}, err
	}
	return *abi.ConvertType(out, new(common.Address)).(*common.Address), nil
}
