// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leveldbkv is the reference storage.KVStore adapter backed by
// syndtr/goleveldb, the teacher repo's on-disk database engine
// (mirrored in spirit from the UTXO-set storage backends used
// throughout blockchain/shell_state.go, here generalized to
// COINjecture's column-family layout).
package leveldbkv

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/coinjecture/consensus/storage"
)

// Store wraps a single goleveldb database, namespacing column families
// by a one-byte prefix plus the caller's key (LevelDB itself has no
// notion of column families; RocksDB-style prefixing is the standard
// substitute).
type Store struct {
	db *leveldb.DB
}

var familyPrefix = map[storage.ColumnFamily]byte{
	storage.CFHeaders:   0x01,
	storage.CFReveals:   0x02,
	storage.CFTree:      0x03,
	storage.CFTips:      0x04,
	storage.CFFinality:  0x05,
	storage.CFReplay:    0x06,
	storage.CFEpochMeta: 0x07,
}

// Open opens (creating if absent) a LevelDB database at dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("leveldbkv: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func prefixedKey(family storage.ColumnFamily, key []byte) ([]byte, error) {
	prefix, ok := familyPrefix[family]
	if !ok {
		return nil, fmt.Errorf("leveldbkv: unknown column family %q", family)
	}
	out := make([]byte, 0, len(key)+1)
	out = append(out, prefix)
	out = append(out, key...)
	return out, nil
}

// Get implements storage.KVStore.
func (s *Store) Get(family storage.ColumnFamily, key []byte) ([]byte, bool, error) {
	pk, err := prefixedKey(family, key)
	if err != nil {
		return nil, false, err
	}
	v, err := s.db.Get(pk, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leveldbkv: get: %w", err)
	}
	return v, true, nil
}

// WriteBatch implements storage.KVStore, applying every op atomically
// via goleveldb's native batch (spec section 6.1).
func (s *Store) WriteBatch(ops []storage.WriteOp) error {
	batch := new(leveldb.Batch)
	for _, op := range ops {
		pk, err := prefixedKey(op.Family, op.Key)
		if err != nil {
			return err
		}
		batch.Put(pk, op.Value)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldbkv: write batch: %w", err)
	}
	return nil
}

// Close implements storage.KVStore.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.KVStore = (*Store)(nil)
