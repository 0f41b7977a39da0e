// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// index addresses a dense arena entry.
type index uint64

func (i index) Bytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))
	return b
}

// Set is an unordered enumerable set with O(1) membership and removal.
// Entries are stored as a dense arena; removal swaps the last entry into the
// removed position, so enumeration order is not stable across removals.
type Set[K Key] struct {
	count   *Uint64
	byIndex *Mapping[index, K]
	indexOf *Mapping[K, uint64] // stores index+1; 0 means absent
}

// NewSet creates a set rooted at the given base position.
func NewSet[K Key](context *Context, base stakeyard.Bytes32) *Set[K] {
	return &Set[K]{
		count:   NewUint64(context, stakeyard.Blake2b(base.Bytes(), []byte("count"))),
		byIndex: NewMapping[index, K](context, stakeyard.Blake2b(base.Bytes(), []byte("entries"))),
		indexOf: NewMapping[K, uint64](context, stakeyard.Blake2b(base.Bytes(), []byte("positions"))),
	}
}

// Len returns the number of entries.
func (s *Set[K]) Len() (uint64, error) {
	return s.count.Get()
}

// Contains returns whether the key is a member.
func (s *Set[K]) Contains(key K) (bool, error) {
	pos, err := s.indexOf.Get(key)
	if err != nil {
		return false, err
	}
	return pos != 0, nil
}

// At returns the entry at the given arena position.
func (s *Set[K]) At(i uint64) (K, error) {
	return s.byIndex.Get(index(i))
}

// Add appends the key if absent. Returns whether the set changed.
func (s *Set[K]) Add(key K) (bool, error) {
	present, err := s.Contains(key)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}

	n, err := s.count.Get()
	if err != nil {
		return false, err
	}
	if err := s.byIndex.Set(index(n), key); err != nil {
		return false, err
	}
	if err := s.indexOf.Set(key, n+1); err != nil {
		return false, err
	}
	s.count.Set(n + 1)
	return true, nil
}

// Remove drops the key if present, swapping the last entry into its slot.
// Returns whether the set changed.
func (s *Set[K]) Remove(key K) (bool, error) {
	pos, err := s.indexOf.Get(key)
	if err != nil {
		return false, err
	}
	if pos == 0 {
		return false, nil
	}

	n, err := s.count.Get()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, errors.New("slot: set count out of sync")
	}

	last := n - 1
	removed := pos - 1
	if removed != last {
		moved, err := s.byIndex.Get(index(last))
		if err != nil {
			return false, err
		}
		if err := s.byIndex.Set(index(removed), moved); err != nil {
			return false, err
		}
		if err := s.indexOf.Set(moved, removed+1); err != nil {
			return false, err
		}
	}

	if err := s.byIndex.Clear(index(last)); err != nil {
		return false, err
	}
	if err := s.indexOf.Clear(key); err != nil {
		return false, err
	}
	s.count.Set(last)
	return true, nil
}

// All returns every entry. Order follows the arena layout.
func (s *Set[K]) All() ([]K, error) {
	n, err := s.count.Get()
	if err != nil {
		return nil, err
	}
	entries := make([]K, 0, n)
	for i := uint64(0); i < n; i++ {
		entry, err := s.byIndex.Get(index(i))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
