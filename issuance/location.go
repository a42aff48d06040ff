// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package issuance - identity of a license issuance
//
// A Location names one issuance by the license contract that created it
// and its index within that contract.  It is a plain comparable value so
// it can be used directly as a map key; two locations built from the same
// components are equal.
package issuance

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
)

// separator between the contract address and the issuance index in the
// string form
const separator = "|"

// byte layout of the packed form
const (
	contractStart  = 0
	contractFinish = contractStart + common.AddressLength

	idStart  = contractFinish
	idFinish = idStart + 8

	// PackedLength - length of the result of Bytes()
	PackedLength = idFinish
)

// Location - identifies an issuance
type Location struct {
	LicenseContract common.Address
	IssuanceID      uint64
}

// New - create a location from its components
func New(licenseContract common.Address, issuanceID uint64) Location {
	return Location{
		LicenseContract: licenseContract,
		IssuanceID:      issuanceID,
	}
}

// FromString - parse the form produced by String
//
// the contract address is accepted in any letter case
func FromString(s string) (Location, error) {
	n := strings.Index(s, separator)
	if n < 0 {
		return Location{}, fault.ErrMalformedIdentifier
	}
	address := s[:n]
	if !common.IsHexAddress(address) {
		return Location{}, fault.ErrMalformedIdentifier
	}
	id, err := strconv.ParseUint(s[n+len(separator):], 10, 64)
	if nil != err {
		return Location{}, fault.ErrMalformedIdentifier
	}
	return New(common.HexToAddress(address), id), nil
}

// FromBytes - unpack the form produced by Bytes
func FromBytes(buffer []byte) (Location, error) {
	if PackedLength != len(buffer) {
		return Location{}, fault.ErrMalformedIdentifier
	}
	return Location{
		LicenseContract: common.BytesToAddress(buffer[contractStart:contractFinish]),
		IssuanceID:      binary.BigEndian.Uint64(buffer[idStart:idFinish]),
	}, nil
}

// String - canonical text form: checksummed address | decimal index
func (l Location) String() string {
	return l.LicenseContract.Hex() + separator + strconv.FormatUint(l.IssuanceID, 10)
}

// Bytes - fixed length key: contract address ⧺ 8 byte big endian index
//
// keys sort by contract first, then by issuance index
func (l Location) Bytes() []byte {
	buffer := make([]byte, PackedLength)
	copy(buffer[contractStart:contractFinish], l.LicenseContract[:])
	binary.BigEndian.PutUint64(buffer[idStart:idFinish], l.IssuanceID)
	return buffer
}

// MarshalText - convert location to text
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText - convert text into a location
func (l *Location) UnmarshalText(s []byte) error {
	loc, err := FromString(string(s))
	if nil != err {
		return err
	}
	*l = loc
	return nil
}
