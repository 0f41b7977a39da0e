// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry tracks the staking collections known to the pool.
// Collections are never removed, so users always keep a withdrawal path.
package registry

import (
	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
)

var (
	slotEntries = slot.NameToSlot("registry-entries")
	slotList    = slot.NameToSlot("registry-list")
)

// Entry is the per-collection record.
type Entry struct {
	Listed        bool
	AcceptsReward bool
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *Entry) IsEmpty() bool {
	return !e.Listed
}

// Service manages the collection registry.
type Service struct {
	entries *slot.Mapping[stakeyard.Address, *Entry]
	list    *slot.Set[stakeyard.Address]
}

// New create a new instance.
func New(context *slot.Context) *Service {
	return &Service{
		entries: slot.NewMapping[stakeyard.Address, *Entry](context, slotEntries),
		list:    slot.NewSet[stakeyard.Address](context, slotList),
	}
}

// Get returns the entry for a collection.
func (s *Service) Get(collection stakeyard.Address) (*Entry, error) {
	entry, err := s.entries.Get(collection)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get collection")
	}
	return entry, nil
}

// IsListed returns whether the collection is registered.
func (s *Service) IsListed(collection stakeyard.Address) (bool, error) {
	entry, err := s.Get(collection)
	if err != nil {
		return false, err
	}
	return entry.Listed, nil
}

// AcceptsReward returns whether the collection currently accepts reward postings.
func (s *Service) AcceptsReward(collection stakeyard.Address) (bool, error) {
	entry, err := s.Get(collection)
	if err != nil {
		return false, err
	}
	return entry.Listed && entry.AcceptsReward, nil
}

// Add registers a new collection, reward-eligible by default.
func (s *Service) Add(collection stakeyard.Address) error {
	entry, err := s.Get(collection)
	if err != nil {
		return err
	}
	if entry.Listed {
		return reverts.Precondition(reverts.CodeDuplicateCollection)
	}

	if err := s.entries.Set(collection, &Entry{Listed: true, AcceptsReward: true}); err != nil {
		return errors.Wrap(err, "failed to set collection")
	}
	if _, err := s.list.Add(collection); err != nil {
		return errors.Wrap(err, "failed to list collection")
	}
	return nil
}

// SetAcceptsReward toggles reward eligibility. Idempotent.
func (s *Service) SetAcceptsReward(collection stakeyard.Address, state bool) error {
	entry, err := s.Get(collection)
	if err != nil {
		return err
	}
	if !entry.Listed {
		return reverts.Precondition(reverts.CodeUnknownCollection)
	}
	if entry.AcceptsReward == state {
		return nil
	}
	entry.AcceptsReward = state
	if err := s.entries.Set(collection, entry); err != nil {
		return errors.Wrap(err, "failed to set collection")
	}
	return nil
}

// All lists every registered collection.
func (s *Service) All() ([]stakeyard.Address, error) {
	return s.list.All()
}
