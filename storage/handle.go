// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// PoolHandle - one table of the store
type PoolHandle struct {
	prefix byte
	limit  []byte
	store  *Store
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		logger.Panic("pool.Put nil database")
		return
	}
	err := p.store.db.Put(p.prefixKey(key), value, nil)
	logger.PanicIfError("pool.Put", err)
}

// PutN - store an amount as 8 big endian bytes
func (p *PoolHandle) PutN(key []byte, n int64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, uint64(n))
	p.Put(key, buffer)
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return
	}
	err := p.store.db.Delete(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Delete", err)
}

// Get - read a value for a given key
//
// returns nil if the key is not present
func (p *PoolHandle) Get(key []byte) []byte {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return nil
	}
	value, err := p.store.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as a big endian amount
//
// second parameter is false if record was not found
// panics if not 8 (or more) bytes in the record
func (p *PoolHandle) GetN(key []byte) (int64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	return DecodeN(buffer), true
}

// DecodeN - decode the first 8 bytes of a record as a big endian amount
func DecodeN(buffer []byte) int64 {
	if len(buffer) < 8 {
		logger.Panicf("pool.DecodeN truncated record: %x", buffer)
	}
	return int64(binary.BigEndian.Uint64(buffer[:8]))
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return false
	}
	value, err := p.store.db.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// Clear - remove every element of the pool
func (p *PoolHandle) Clear() {
	p.store.RLock()
	defer p.store.RUnlock()
	if nil == p.store.db {
		return
	}

	maxRange := ldb_util.Range{
		Start: []byte{p.prefix}, // Start of key range, included in the range
		Limit: p.limit,          // Limit of key range, excluded from the range
	}

	batch := new(leveldb.Batch)
	iter := p.store.db.NewIterator(&maxRange, nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	logger.PanicIfError("pool.Clear", iter.Error())

	err := p.store.db.Write(batch, nil)
	logger.PanicIfError("pool.Clear", err)
}
