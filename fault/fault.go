// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type InvariantError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrConfigurationNotTable      = InvalidError("configuration file must return a table")
	ErrInvalidAddress             = InvalidError("invalid address")
	ErrInvalidAmount              = InvalidError("invalid amount")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrMalformedIdentifier        = InvalidError("malformed issuance identifier")
	ErrMissingAddresses           = InvalidError("no addresses given")
	ErrMissingTransactionHash     = InvalidError("transaction hash is required")
	ErrNotADirectory              = InvalidError("not a directory")
	ErrNegativeOwnedBalance       = InvariantError("owned balance is negative")
	ErrNegativeSnapshotBalance    = InvariantError("snapshot balance is negative")
	ErrNotInitialised             = NotFoundError("not initialised")
	ErrTransactionAlreadyExists   = ExistsError("transaction already exists")
	ErrTransactionNotFound        = NotFoundError("transaction not found")
	ErrUnknownTransactionType     = InvalidError("unknown transaction type")
	ErrUnknownEventKind           = InvalidError("unknown event kind")
	ErrValueOutOfRange            = InvalidError("value out of range")
	ErrWatcherAlreadyRunning      = ExistsError("contract is already watched")
	ErrWrongNetworkForTransaction = InvalidError("transaction belongs to another network")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string    { return string(e) }
func (e InvalidError) Error() string   { return string(e) }
func (e InvariantError) Error() string { return string(e) }
func (e NotFoundError) Error() string  { return string(e) }
func (e ProcessError) Error() string   { return string(e) }

// LedgerQueryError - a failed read or subscription against the ledger
type LedgerQueryError struct {
	Operation string
	Err       error
}

// Error - the error interface method
func (e *LedgerQueryError) Error() string {
	return fmt.Sprintf("ledger query: %s failed: %v", e.Operation, e.Err)
}

// Unwrap - expose the cause
func (e *LedgerQueryError) Unwrap() error { return e.Err }

// LedgerQuery - wrap err as a ledger failure of the named operation
//
// an error that already is a ledger failure is returned unchanged
func LedgerQuery(operation string, err error) error {
	if nil == err {
		return nil
	}
	var lq *LedgerQueryError
	if errors.As(err, &lq) {
		return err
	}
	return &LedgerQueryError{
		Operation: operation,
		Err:       err,
	}
}

// determine the class of an error
func IsErrExists(e error) bool    { var x ExistsError; return errors.As(e, &x) }
func IsErrInvalid(e error) bool   { var x InvalidError; return errors.As(e, &x) }
func IsErrInvariant(e error) bool { var x InvariantError; return errors.As(e, &x) }
func IsErrNotFound(e error) bool  { var x NotFoundError; return errors.As(e, &x) }
func IsErrProcess(e error) bool   { var x ProcessError; return errors.As(e, &x) }

// IsErrLedgerQuery - true for any error wrapping a ledger failure
func IsErrLedgerQuery(e error) bool {
	var lq *LedgerQueryError
	return errors.As(e, &lq)
}
