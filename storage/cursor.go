// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

// Map - run a function on all elements of the pool in key order
//
// f runs under the store read lock and must not write to the store
func (p *PoolHandle) Map(f func(key []byte, value []byte) error) error {
	return p.iterate(&ldb_util.Range{
		Start: []byte{p.prefix}, // Start of key range, included in the range
		Limit: p.limit,          // Limit of key range, excluded from the range
	}, f)
}

// PrefixMap - run a function on all elements whose key starts with prefix
//
// the key passed to f still includes the prefix
func (p *PoolHandle) PrefixMap(prefix []byte, f func(key []byte, value []byte) error) error {
	return p.iterate(ldb_util.BytesPrefix(p.prefixKey(prefix)), f)
}

func (p *PoolHandle) iterate(maxRange *ldb_util.Range, f func(key []byte, value []byte) error) error {
	p.store.RLock()
	defer p.store.RUnlock()

	if nil == p.store.db {
		return nil
	}

	iter := p.store.db.NewIterator(maxRange, nil)

	var err error
iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		err = f(dataKey, dataValue)
		if err != nil {
			break iterating
		}
	}
	iter.Release()
	if err == nil {
		err = iter.Error()
	}
	return err
}
