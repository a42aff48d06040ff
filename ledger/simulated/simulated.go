// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package simulated - an in-memory license contract ledger
//
// Each write operation mines one block containing a single transaction.
// Reads follow the contract: balance includes borrowed units, the
// reclaimable balance of an address is what it has borrowed, and the
// relevant issuance and reclaim origin indexes are append only.
package simulated

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// errors from write operations
var (
	ErrContractNotFound   = fault.NotFoundError("license contract not found")
	ErrIssuanceNotFound   = fault.NotFoundError("issuance not found")
	ErrIssuanceRevoked    = fault.InvalidError("issuance is revoked")
	ErrInsufficientOwned  = fault.InvalidError("insufficient owned balance")
	ErrInsufficientClaim  = fault.InvalidError("insufficient reclaimable balance")
	ErrIndexOutOfRange    = fault.InvalidError("index out of range")
	ErrContractDisabled   = fault.InvalidError("license contract is disabled")
	ErrNonPositiveAmount  = fault.InvalidError("amount must be positive")
	ErrTransferToYourself = fault.InvalidError("cannot transfer to the sender")
)

type issuanceState struct {
	revoked bool

	// units held including borrowed
	balance map[common.Address]int64

	// units held that are borrowed
	borrowed map[common.Address]int64

	// owner → reclaimer → units
	reclaimableBy map[common.Address]map[common.Address]int64

	// reclaimer → owners it ever lent to
	origins map[common.Address][]common.Address
}

type licenseContract struct {
	root      common.Address
	signed    bool
	disabled  bool
	issuances []*issuanceState

	// owner → issuance ids received, in order of first receipt
	relevant map[common.Address][]uint64
}

// Ledger - the simulated chain
type Ledger struct {
	sync.Mutex

	blockNumber  uint64
	transactions uint64
	contracts    map[common.Address]*licenseContract
	events       []ledger.Event
	subscribers  map[*subscription]struct{}

	// when set every read fails with this cause
	failure error
}

// New - create an empty chain
func New() *Ledger {
	return &Ledger{
		contracts:   make(map[common.Address]*licenseContract),
		subscribers: make(map[*subscription]struct{}),
	}
}

// Fail - make all subsequent reads fail, nil restores normal operation
func (l *Ledger) Fail(err error) {
	l.Lock()
	defer l.Unlock()
	l.failure = err
}

// BlockNumber - number of the latest mined block
func (l *Ledger) BlockNumber() uint64 {
	l.Lock()
	defer l.Unlock()
	return l.blockNumber
}

// NextTransactionHash - hash the next write operation will be mined with
func (l *Ledger) NextTransactionHash() common.Hash {
	l.Lock()
	defer l.Unlock()
	return transactionHash(l.transactions + 1)
}

func transactionHash(n uint64) common.Hash {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return crypto.Keccak256Hash([]byte("simulated"), buffer)
}

// CreateLicenseContract - deploy a license contract from a root contract
func (l *Ledger) CreateLicenseContract(root common.Address) (common.Address, common.Hash) {
	l.Lock()
	defer l.Unlock()

	hash := l.mine()
	address := crypto.CreateAddress(root, l.transactions)
	l.contracts[address] = &licenseContract{
		root:     root,
		relevant: make(map[common.Address][]uint64),
	}
	l.emit(ledger.Event{
		Kind:     ledger.LicenseContractCreation,
		Contract: root,
		Created:  address,
	}, hash)
	return address, hash
}

// Sign - sign a license contract
func (l *Ledger) Sign(contract common.Address) (common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	c, ok := l.contracts[contract]
	if !ok {
		return common.Hash{}, ErrContractNotFound
	}
	hash := l.mine()
	c.signed = true
	l.emit(ledger.Event{Kind: ledger.Signing, Contract: contract}, hash)
	return hash, nil
}

// Disable - disable a license contract, no more issuing
func (l *Ledger) Disable(contract common.Address) (common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	c, ok := l.contracts[contract]
	if !ok {
		return common.Hash{}, ErrContractNotFound
	}
	hash := l.mine()
	c.disabled = true
	l.emit(ledger.Event{Kind: ledger.Disabling, Contract: contract}, hash)
	return hash, nil
}

// Issue - create a new issuance of amount units owned by to
func (l *Ledger) Issue(contract common.Address, to common.Address, amount int64) (uint64, common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	c, ok := l.contracts[contract]
	if !ok {
		return 0, common.Hash{}, ErrContractNotFound
	}
	if c.disabled {
		return 0, common.Hash{}, ErrContractDisabled
	}
	if amount <= 0 {
		return 0, common.Hash{}, ErrNonPositiveAmount
	}

	hash := l.mine()

	id := uint64(len(c.issuances))
	state := &issuanceState{
		balance:       map[common.Address]int64{to: amount},
		borrowed:      make(map[common.Address]int64),
		reclaimableBy: make(map[common.Address]map[common.Address]int64),
		origins:       make(map[common.Address][]common.Address),
	}
	c.issuances = append(c.issuances, state)
	c.addRelevant(to, id)

	l.emit(ledger.Event{Kind: ledger.Issuing, Contract: contract, IssuanceID: id}, hash)
	l.emit(ledger.Event{
		Kind:       ledger.Transfer,
		Contract:   contract,
		IssuanceID: id,
		From:       ledger.ZeroAddress,
		To:         to,
		Amount:     amount,
	}, hash)
	return id, hash, nil
}

// Transfer - move owned units
func (l *Ledger) Transfer(contract common.Address, issuanceID uint64, from common.Address, to common.Address, amount int64) (common.Hash, error) {
	return l.transfer(contract, issuanceID, from, to, amount, false)
}

// TransferAndAllowReclaim - lend owned units, from may reclaim them later
func (l *Ledger) TransferAndAllowReclaim(contract common.Address, issuanceID uint64, from common.Address, to common.Address, amount int64) (common.Hash, error) {
	return l.transfer(contract, issuanceID, from, to, amount, true)
}

// Destroy - burn owned units
func (l *Ledger) Destroy(contract common.Address, issuanceID uint64, from common.Address, amount int64) (common.Hash, error) {
	return l.transfer(contract, issuanceID, from, ledger.ZeroAddress, amount, false)
}

func (l *Ledger) transfer(contract common.Address, issuanceID uint64, from common.Address, to common.Address, amount int64, reclaimable bool) (common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	c, state, err := l.issuance(contract, issuanceID)
	if nil != err {
		return common.Hash{}, err
	}
	if state.revoked {
		return common.Hash{}, ErrIssuanceRevoked
	}
	if amount <= 0 {
		return common.Hash{}, ErrNonPositiveAmount
	}
	if from == to {
		return common.Hash{}, ErrTransferToYourself
	}
	if state.balance[from]-state.borrowed[from] < amount {
		return common.Hash{}, ErrInsufficientOwned
	}

	hash := l.mine()

	state.balance[from] -= amount
	if ledger.ZeroAddress != to {
		state.balance[to] += amount
		c.addRelevant(to, issuanceID)
	}
	if reclaimable && ledger.ZeroAddress != to {
		state.borrowed[to] += amount
		byOwner, ok := state.reclaimableBy[to]
		if !ok {
			byOwner = make(map[common.Address]int64)
			state.reclaimableBy[to] = byOwner
		}
		byOwner[from] += amount
		state.addOrigin(from, to)
	}

	l.emit(ledger.Event{
		Kind:        ledger.Transfer,
		Contract:    contract,
		IssuanceID:  issuanceID,
		From:        from,
		To:          to,
		Amount:      amount,
		Reclaimable: reclaimable,
	}, hash)
	return hash, nil
}

// Reclaim - reclaimer takes back lent units from currentOwner
func (l *Ledger) Reclaim(contract common.Address, issuanceID uint64, reclaimer common.Address, currentOwner common.Address, amount int64) (common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	_, state, err := l.issuance(contract, issuanceID)
	if nil != err {
		return common.Hash{}, err
	}
	if amount <= 0 {
		return common.Hash{}, ErrNonPositiveAmount
	}
	if state.reclaimableBy[currentOwner][reclaimer] < amount {
		return common.Hash{}, ErrInsufficientClaim
	}

	hash := l.mine()

	state.balance[currentOwner] -= amount
	state.borrowed[currentOwner] -= amount
	state.reclaimableBy[currentOwner][reclaimer] -= amount
	state.balance[reclaimer] += amount

	l.emit(ledger.Event{
		Kind:       ledger.Reclaim,
		Contract:   contract,
		IssuanceID: issuanceID,
		From:       currentOwner,
		To:         reclaimer,
		Amount:     amount,
	}, hash)
	return hash, nil
}

// Revoke - mark an issuance revoked, balances are kept
func (l *Ledger) Revoke(contract common.Address, issuanceID uint64) (common.Hash, error) {
	l.Lock()
	defer l.Unlock()

	_, state, err := l.issuance(contract, issuanceID)
	if nil != err {
		return common.Hash{}, err
	}

	hash := l.mine()
	state.revoked = true
	l.emit(ledger.Event{Kind: ledger.Revoke, Contract: contract, IssuanceID: issuanceID}, hash)
	return hash, nil
}

// must hold lock
func (l *Ledger) issuance(contract common.Address, issuanceID uint64) (*licenseContract, *issuanceState, error) {
	c, ok := l.contracts[contract]
	if !ok {
		return nil, nil, ErrContractNotFound
	}
	if issuanceID >= uint64(len(c.issuances)) {
		return nil, nil, ErrIssuanceNotFound
	}
	return c, c.issuances[issuanceID], nil
}

// start a new block with one transaction, must hold lock
func (l *Ledger) mine() common.Hash {
	l.blockNumber += 1
	l.transactions += 1
	return transactionHash(l.transactions)
}

// record and publish an event of the current block, must hold lock
func (l *Ledger) emit(e ledger.Event, hash common.Hash) {
	e.BlockNumber = l.blockNumber
	e.TransactionIndex = 0
	e.TransactionHash = hash
	l.events = append(l.events, e)

	for s := range l.subscribers {
		if s.query.Matches(&e) {
			s.push(e)
		}
	}
}

func (c *licenseContract) addRelevant(owner common.Address, issuanceID uint64) {
	for _, id := range c.relevant[owner] {
		if id == issuanceID {
			return
		}
	}
	c.relevant[owner] = append(c.relevant[owner], issuanceID)
}

func (s *issuanceState) addOrigin(reclaimer common.Address, owner common.Address) {
	for _, a := range s.origins[reclaimer] {
		if a == owner {
			return
		}
	}
	s.origins[reclaimer] = append(s.origins[reclaimer], owner)
}

// read side

// must hold lock
func (l *Ledger) read(operation string, contract common.Address, issuanceID uint64) (*issuanceState, error) {
	if nil != l.failure {
		return nil, fault.LedgerQuery(operation, l.failure)
	}
	_, state, err := l.issuance(contract, issuanceID)
	if nil != err {
		return nil, fault.LedgerQuery(operation, err)
	}
	return state, nil
}

// Balance - see ledger.Client
func (l *Ledger) Balance(_ context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error) {
	l.Lock()
	defer l.Unlock()

	state, err := l.read("balance", contract, issuanceID)
	if nil != err {
		return 0, err
	}
	return state.balance[owner], nil
}

// ReclaimableBalance - see ledger.Client
func (l *Ledger) ReclaimableBalance(_ context.Context, contract common.Address, issuanceID uint64, owner common.Address) (int64, error) {
	l.Lock()
	defer l.Unlock()

	state, err := l.read("reclaimableBalance", contract, issuanceID)
	if nil != err {
		return 0, err
	}
	return state.borrowed[owner], nil
}

// ReclaimableBalanceBy - see ledger.Client
func (l *Ledger) ReclaimableBalanceBy(_ context.Context, contract common.Address, issuanceID uint64, currentOwner common.Address, reclaimer common.Address) (int64, error) {
	l.Lock()
	defer l.Unlock()

	state, err := l.read("reclaimableBalanceBy", contract, issuanceID)
	if nil != err {
		return 0, err
	}
	return state.reclaimableBy[currentOwner][reclaimer], nil
}

// RelevantIssuancesCount - see ledger.Client
func (l *Ledger) RelevantIssuancesCount(_ context.Context, contract common.Address, owner common.Address) (uint64, error) {
	l.Lock()
	defer l.Unlock()

	c, err := l.contract("relevantIssuancesCount", contract)
	if nil != err {
		return 0, err
	}
	return uint64(len(c.relevant[owner])), nil
}

// RelevantIssuances - see ledger.Client
func (l *Ledger) RelevantIssuances(_ context.Context, contract common.Address, owner common.Address, index uint64) (uint64, error) {
	l.Lock()
	defer l.Unlock()

	c, err := l.contract("relevantIssuances", contract)
	if nil != err {
		return 0, err
	}
	list := c.relevant[owner]
	if index >= uint64(len(list)) {
		return 0, fault.LedgerQuery("relevantIssuances", ErrIndexOutOfRange)
	}
	return list[index], nil
}

// AddressesLicensesCanBeReclaimedFromCount - see ledger.Client
func (l *Ledger) AddressesLicensesCanBeReclaimedFromCount(_ context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address) (uint64, error) {
	l.Lock()
	defer l.Unlock()

	state, err := l.read("addressesLicensesCanBeReclaimedFromCount", contract, issuanceID)
	if nil != err {
		return 0, err
	}
	return uint64(len(state.origins[reclaimer])), nil
}

// AddressesLicensesCanBeReclaimedFrom - see ledger.Client
func (l *Ledger) AddressesLicensesCanBeReclaimedFrom(_ context.Context, contract common.Address, issuanceID uint64, reclaimer common.Address, index uint64) (common.Address, error) {
	l.Lock()
	defer l.Unlock()

	state, err := l.read("addressesLicensesCanBeReclaimedFrom", contract, issuanceID)
	if nil != err {
		return common.Address{}, err
	}
	list := state.origins[reclaimer]
	if index >= uint64(len(list)) {
		return common.Address{}, fault.LedgerQuery("addressesLicensesCanBeReclaimedFrom", ErrIndexOutOfRange)
	}
	return list[index], nil
}

// must hold lock
func (l *Ledger) contract(operation string, contract common.Address) (*licenseContract, error) {
	if nil != l.failure {
		return nil, fault.LedgerQuery(operation, l.failure)
	}
	c, ok := l.contracts[contract]
	if !ok {
		return nil, fault.LedgerQuery(operation, ErrContractNotFound)
	}
	return c, nil
}

// FilterEvents - see ledger.Client
func (l *Ledger) FilterEvents(_ context.Context, query ledger.Query) ([]ledger.Event, error) {
	l.Lock()
	defer l.Unlock()

	if nil != l.failure {
		return nil, fault.LedgerQuery("filter "+query.Kind.String(), l.failure)
	}
	return l.matching(&query), nil
}

// must hold lock
func (l *Ledger) matching(query *ledger.Query) []ledger.Event {
	result := make([]ledger.Event, 0, 16)
	for i := range l.events {
		if query.Matches(&l.events[i]) {
			result = append(result, l.events[i])
		}
	}
	return result
}
