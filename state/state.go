// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeyard/stakeyard/kv"
	"github.com/stakeyard/stakeyard/stackedmap"
	"github.com/stakeyard/stakeyard/stakeyard"
)

const (
	storageKeyPrefix = "s"

	readCacheSize = 2048
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// storageKey journal key of a storage slot.
type storageKey struct {
	addr stakeyard.Address
	key  stakeyard.Bytes32
}

func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(storageKeyPrefix)+stakeyard.AddressLength+32)
	b = append(b, storageKeyPrefix...)
	b = append(b, k.addr.Bytes()...)
	return append(b, k.key.Bytes()...)
}

// State manages keyed ledger storage in a save-restore manner.
// Uncommitted writes live in a stacked journal, so a whole call can be
// reverted to a checkpoint without touching the underlying store.
type State struct {
	db    kv.GetPutter
	cache *readCache // raw values read from db
	sm    *stackedmap.StackedMap
	base  int
}

// New create a state object backed by the given store.
func New(db kv.GetPutter) *State {
	state := State{
		db:    db,
		cache: newReadCache(readCacheSize),
	}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.dbGetter(key.(storageKey))
	})
	// the base level collects committed-pending writes
	state.base = state.sm.Push()
	return &state
}

// dbGetter implements stackedmap.MapGetter.
func (s *State) dbGetter(key storageKey) (interface{}, bool, error) {
	raw, err := s.cache.getOrLoad(key, func() (rlp.RawValue, error) {
		data, err := s.db.Get(key.dbKey())
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr stakeyard.Address, key stakeyard.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr stakeyard.Address, key stakeyard.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr stakeyard.Address, key stakeyard.Bytes32) (stakeyard.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return stakeyard.Bytes32{}, err
	}
	if len(raw) == 0 {
		return stakeyard.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return stakeyard.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return stakeyard.Blake2b(raw), nil
	}
	return stakeyard.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr stakeyard.Address, key, value stakeyard.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr stakeyard.Address, key stakeyard.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr stakeyard.Address, key stakeyard.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flushes all journaled writes into the underlying store and
// resets the journal. The state stays usable afterwards.
func (s *State) Commit() error {
	batch := s.db.NewBatch()

	// dedupe: the last write of a key wins
	pending := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k, v interface{}) bool {
		pending[k.(storageKey)] = v.(rlp.RawValue)
		return true
	})

	for key, raw := range pending {
		if len(raw) == 0 {
			if err := batch.Delete(key.dbKey()); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(key.dbKey(), raw); err != nil {
				return &Error{err}
			}
		}
		s.cache.add(key, raw)
	}

	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	s.sm.PopTo(s.base)
	s.base = s.sm.Push()
	return nil
}
