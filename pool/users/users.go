// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package users keeps the per-user ledger: custodied positions by collection,
// stake counts and accumulated claimable balances in both reward assets.
package users

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
)

var (
	slotEntries   = slot.NameToSlot("user-entries")
	slotList      = slot.NameToSlot("user-list")
	slotStakers   = slot.NameToSlot("collection-stakers")
	slotCustody   = slot.NameToSlot("collection-custody")
	slotTokens    = slot.NameToSlot("user-tokens")
	slotUserColls = slot.NameToSlot("user-collections")
)

// Entry is the per-user balance record.
type Entry struct {
	ClaimableA *big.Int
	ClaimableB *big.Int
	StakeCount uint64
}

func emptyEntry() *Entry {
	return &Entry{ClaimableA: new(big.Int), ClaimableB: new(big.Int)}
}

// Service manages user ledger entries and the incremental per-collection
// staker sets a reward posting snapshots from.
type Service struct {
	context *slot.Context
	entries *slot.Mapping[stakeyard.Address, *Entry]
	list    *slot.Set[stakeyard.Address]
	custody *slot.Mapping[stakeyard.Address, uint64]
}

// New create a new instance.
func New(context *slot.Context) *Service {
	return &Service{
		context: context,
		entries: slot.NewMapping[stakeyard.Address, *Entry](context, slotEntries),
		list:    slot.NewSet[stakeyard.Address](context, slotList),
		custody: slot.NewMapping[stakeyard.Address, uint64](context, slotCustody),
	}
}

func (s *Service) tokens(user, collection stakeyard.Address) *slot.Set[*big.Int] {
	base := stakeyard.Blake2b(slotTokens.Bytes(), user.Bytes(), collection.Bytes())
	return slot.NewSet[*big.Int](s.context, base)
}

func (s *Service) stakers(collection stakeyard.Address) *slot.Set[stakeyard.Address] {
	base := stakeyard.Blake2b(slotStakers.Bytes(), collection.Bytes())
	return slot.NewSet[stakeyard.Address](s.context, base)
}

func (s *Service) collectionsOf(user stakeyard.Address) *slot.Set[stakeyard.Address] {
	base := stakeyard.Blake2b(slotUserColls.Bytes(), user.Bytes())
	return slot.NewSet[stakeyard.Address](s.context, base)
}

// GetEntry returns the user's balance record. Unknown users read as empty.
func (s *Service) GetEntry(user stakeyard.Address) (*Entry, error) {
	entry, err := s.entries.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if entry.ClaimableA == nil {
		entry.ClaimableA = new(big.Int)
	}
	if entry.ClaimableB == nil {
		entry.ClaimableB = new(big.Int)
	}
	return entry, nil
}

func (s *Service) setEntry(user stakeyard.Address, entry *Entry) error {
	if err := s.entries.Set(user, entry); err != nil {
		return errors.Wrap(err, "failed to set user")
	}
	return nil
}

// AddPosition moves a position into the user's ledger.
// The user is registered globally on first deposit.
func (s *Service) AddPosition(user, collection stakeyard.Address, id *big.Int) error {
	entry, err := s.GetEntry(user)
	if err != nil {
		return err
	}

	added, err := s.tokens(user, collection).Add(id)
	if err != nil {
		return err
	}
	if !added {
		return errors.Errorf("position %s already custodied", id)
	}

	entry.StakeCount++
	if err := s.setEntry(user, entry); err != nil {
		return err
	}

	if _, err := s.list.Add(user); err != nil {
		return err
	}
	if _, err := s.stakers(collection).Add(user); err != nil {
		return err
	}
	if _, err := s.collectionsOf(user).Add(collection); err != nil {
		return err
	}

	custody, err := s.custody.Get(collection)
	if err != nil {
		return err
	}
	return s.custody.Set(collection, custody+1)
}

// RemovePosition moves a position out of the user's ledger.
// Fails when the position is not in the user's set for that collection.
func (s *Service) RemovePosition(user, collection stakeyard.Address, id *big.Int) error {
	tokens := s.tokens(user, collection)
	removed, err := tokens.Remove(id)
	if err != nil {
		return err
	}
	if !removed {
		return reverts.Precondition(reverts.CodeNotOwner)
	}

	entry, err := s.GetEntry(user)
	if err != nil {
		return err
	}
	entry.StakeCount--
	if err := s.setEntry(user, entry); err != nil {
		return err
	}

	left, err := tokens.Len()
	if err != nil {
		return err
	}
	if left == 0 {
		if _, err := s.stakers(collection).Remove(user); err != nil {
			return err
		}
		if _, err := s.collectionsOf(user).Remove(collection); err != nil {
			return err
		}
	}

	custody, err := s.custody.Get(collection)
	if err != nil {
		return err
	}
	if custody == 0 {
		return errors.New("custody count out of sync")
	}
	return s.custody.Set(collection, custody-1)
}

// HoldingCount returns how many positions of the collection the user holds.
func (s *Service) HoldingCount(user, collection stakeyard.Address) (uint64, error) {
	return s.tokens(user, collection).Len()
}

// Positions lists the user's custodied positions of the collection.
func (s *Service) Positions(user, collection stakeyard.Address) ([]*big.Int, error) {
	return s.tokens(user, collection).All()
}

// Collections lists the collections the user currently has positions in.
func (s *Service) Collections(user stakeyard.Address) ([]stakeyard.Address, error) {
	return s.collectionsOf(user).All()
}

// Custody returns the number of positions the pool custodies for a collection.
func (s *Service) Custody(collection stakeyard.Address) (uint64, error) {
	return s.custody.Get(collection)
}

// Stakers returns the users currently holding at least one position of the
// collection. This is the eligibility snapshot source for reward postings.
func (s *Service) Stakers(collection stakeyard.Address) ([]stakeyard.Address, error) {
	return s.stakers(collection).All()
}

// Credit accumulates claimable reward balances.
func (s *Service) Credit(user stakeyard.Address, amountA, amountB *big.Int) error {
	entry, err := s.GetEntry(user)
	if err != nil {
		return err
	}
	entry.ClaimableA.Add(entry.ClaimableA, amountA)
	entry.ClaimableB.Add(entry.ClaimableB, amountB)
	return s.setEntry(user, entry)
}

// ResetClaimables zeroes both claimable balances, returning the old values.
func (s *Service) ResetClaimables(user stakeyard.Address) (*big.Int, *big.Int, error) {
	entry, err := s.GetEntry(user)
	if err != nil {
		return nil, nil, err
	}
	owedA, owedB := entry.ClaimableA, entry.ClaimableB
	entry.ClaimableA = new(big.Int)
	entry.ClaimableB = new(big.Int)
	if err := s.setEntry(user, entry); err != nil {
		return nil, nil, err
	}
	return owedA, owedB, nil
}

// All lists every user ever registered.
func (s *Service) All() ([]stakeyard.Address, error) {
	return s.list.All()
}
