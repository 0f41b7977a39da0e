// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package users

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
)

func newTestService() *Service {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return New(slot.NewContext(stakeyard.BytesToAddress([]byte("pool")), st))
}

func TestAddRemovePosition(t *testing.T) {
	s := newTestService()
	alice := stakeyard.BytesToAddress([]byte("alice"))
	coll := stakeyard.BytesToAddress([]byte("coll"))

	assert.Nil(t, s.AddPosition(alice, coll, big.NewInt(7)))
	assert.Nil(t, s.AddPosition(alice, coll, big.NewInt(9)))

	entry, err := s.GetEntry(alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), entry.StakeCount)

	holding, err := s.HoldingCount(alice, coll)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), holding)

	custody, err := s.Custody(coll)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2), custody)

	stakers, err := s.Stakers(coll)
	assert.Nil(t, err)
	assert.Equal(t, []stakeyard.Address{alice}, stakers)

	assert.Nil(t, s.RemovePosition(alice, coll, big.NewInt(7)))

	custody, _ = s.Custody(coll)
	assert.Equal(t, uint64(1), custody)

	// user stays a staker while one position remains
	stakers, _ = s.Stakers(coll)
	assert.Equal(t, []stakeyard.Address{alice}, stakers)

	assert.Nil(t, s.RemovePosition(alice, coll, big.NewInt(9)))

	stakers, _ = s.Stakers(coll)
	assert.Empty(t, stakers)

	colls, err := s.Collections(alice)
	assert.Nil(t, err)
	assert.Empty(t, colls)

	// the user record itself is never destroyed
	all, err := s.All()
	assert.Nil(t, err)
	assert.Equal(t, []stakeyard.Address{alice}, all)
}

func TestRemoveNotOwner(t *testing.T) {
	s := newTestService()
	alice := stakeyard.BytesToAddress([]byte("alice"))
	bob := stakeyard.BytesToAddress([]byte("bob"))
	coll := stakeyard.BytesToAddress([]byte("coll"))

	assert.Nil(t, s.AddPosition(alice, coll, big.NewInt(7)))

	err := s.RemovePosition(bob, coll, big.NewInt(7))
	assert.True(t, reverts.IsCode(err, reverts.CodeNotOwner))
}

func TestCustodyInvariant(t *testing.T) {
	s := newTestService()
	coll := stakeyard.BytesToAddress([]byte("coll"))
	alice := stakeyard.BytesToAddress([]byte("alice"))
	bob := stakeyard.BytesToAddress([]byte("bob"))

	assert.Nil(t, s.AddPosition(alice, coll, big.NewInt(1)))
	assert.Nil(t, s.AddPosition(alice, coll, big.NewInt(2)))
	assert.Nil(t, s.AddPosition(bob, coll, big.NewInt(3)))
	assert.Nil(t, s.RemovePosition(alice, coll, big.NewInt(1)))

	// custody equals the sum of per-user holdings
	var sum uint64
	for _, user := range []stakeyard.Address{alice, bob} {
		holding, err := s.HoldingCount(user, coll)
		assert.Nil(t, err)
		sum += holding
	}
	custody, err := s.Custody(coll)
	assert.Nil(t, err)
	assert.Equal(t, sum, custody)
}

func TestCreditAndReset(t *testing.T) {
	s := newTestService()
	alice := stakeyard.BytesToAddress([]byte("alice"))

	assert.Nil(t, s.Credit(alice, big.NewInt(100), big.NewInt(7)))
	assert.Nil(t, s.Credit(alice, big.NewInt(50), big.NewInt(0)))

	entry, err := s.GetEntry(alice)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(150), entry.ClaimableA)
	assert.Equal(t, big.NewInt(7), entry.ClaimableB)

	owedA, owedB, err := s.ResetClaimables(alice)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(150), owedA)
	assert.Equal(t, big.NewInt(7), owedB)

	entry, _ = s.GetEntry(alice)
	assert.Zero(t, entry.ClaimableA.Sign())
	assert.Zero(t, entry.ClaimableB.Sign())
}
