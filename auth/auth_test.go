// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
)

func newTestGate() *Gate {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return New(slot.NewContext(stakeyard.BytesToAddress([]byte("gate")), st))
}

func TestGrantRevoke(t *testing.T) {
	gate := newTestGate()
	admin := stakeyard.BytesToAddress([]byte("admin"))

	has, err := gate.Has(RoleAdmin, admin)
	assert.Nil(t, err)
	assert.False(t, has)

	assert.Nil(t, gate.Grant(RoleAdmin, admin))
	has, err = gate.Has(RoleAdmin, admin)
	assert.Nil(t, err)
	assert.True(t, has)

	// roles are independent
	has, err = gate.Has(RoleRewarder, admin)
	assert.Nil(t, err)
	assert.False(t, has)

	assert.Nil(t, gate.Revoke(RoleAdmin, admin))
	has, err = gate.Has(RoleAdmin, admin)
	assert.Nil(t, err)
	assert.False(t, has)
}

func TestRequire(t *testing.T) {
	gate := newTestGate()
	rewarder := stakeyard.BytesToAddress([]byte("rewarder"))
	stranger := stakeyard.BytesToAddress([]byte("stranger"))

	assert.Nil(t, gate.Grant(RoleRewarder, rewarder))
	assert.Nil(t, gate.Require(RoleRewarder, rewarder))

	err := gate.Require(RoleRewarder, stranger)
	assert.Error(t, err)
	assert.Equal(t, reverts.CategoryAuthorization, reverts.CategoryOf(err))
}
