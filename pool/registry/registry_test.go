// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
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

func TestAdd(t *testing.T) {
	s := newTestService()
	c1 := stakeyard.BytesToAddress([]byte("c1"))

	listed, err := s.IsListed(c1)
	assert.Nil(t, err)
	assert.False(t, listed)

	assert.Nil(t, s.Add(c1))

	listed, err = s.IsListed(c1)
	assert.Nil(t, err)
	assert.True(t, listed)

	// reward-eligible by default
	accepts, err := s.AcceptsReward(c1)
	assert.Nil(t, err)
	assert.True(t, accepts)

	err = s.Add(c1)
	assert.True(t, reverts.IsCode(err, reverts.CodeDuplicateCollection))
}

func TestSetAcceptsReward(t *testing.T) {
	s := newTestService()
	c1 := stakeyard.BytesToAddress([]byte("c1"))

	err := s.SetAcceptsReward(c1, false)
	assert.True(t, reverts.IsCode(err, reverts.CodeUnknownCollection))

	assert.Nil(t, s.Add(c1))
	assert.Nil(t, s.SetAcceptsReward(c1, false))

	accepts, err := s.AcceptsReward(c1)
	assert.Nil(t, err)
	assert.False(t, accepts)

	// idempotent
	assert.Nil(t, s.SetAcceptsReward(c1, false))
	assert.Nil(t, s.SetAcceptsReward(c1, true))

	accepts, err = s.AcceptsReward(c1)
	assert.Nil(t, err)
	assert.True(t, accepts)
}

func TestAll(t *testing.T) {
	s := newTestService()
	c1 := stakeyard.BytesToAddress([]byte("c1"))
	c2 := stakeyard.BytesToAddress([]byte("c2"))

	assert.Nil(t, s.Add(c1))
	assert.Nil(t, s.Add(c2))

	all, err := s.All()
	assert.Nil(t, err)
	assert.ElementsMatch(t, []stakeyard.Address{c1, c2}, all)
}
