// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth implements the role gate guarding privileged pool operations.
package auth

import (
	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
)

// Role names a privilege class.
type Role uint8

const (
	// RoleAdmin registers collections, toggles reward eligibility,
	// configures asset addresses and sweeps unrelated tokens.
	RoleAdmin Role = iota + 1
	// RoleRewarder posts rewards.
	RoleRewarder
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRewarder:
		return "rewarder"
	}
	return "unknown"
}

var slotMembers = slot.NameToSlot("auth-members")

type memberKey struct {
	role Role
	addr stakeyard.Address
}

func (k memberKey) Bytes() []byte {
	return append([]byte{byte(k.role)}, k.addr.Bytes()...)
}

// Gate is the state-backed role membership registry.
type Gate struct {
	members *slot.Mapping[memberKey, bool]
}

// New create a gate bound to the given storage context.
func New(context *slot.Context) *Gate {
	return &Gate{
		members: slot.NewMapping[memberKey, bool](context, slotMembers),
	}
}

// Grant adds the address to the role.
func (g *Gate) Grant(role Role, addr stakeyard.Address) error {
	if err := g.members.Set(memberKey{role, addr}, true); err != nil {
		return errors.Wrap(err, "failed to grant role")
	}
	return nil
}

// Revoke removes the address from the role.
func (g *Gate) Revoke(role Role, addr stakeyard.Address) error {
	if err := g.members.Clear(memberKey{role, addr}); err != nil {
		return errors.Wrap(err, "failed to revoke role")
	}
	return nil
}

// Has returns whether the address holds the role.
func (g *Gate) Has(role Role, addr stakeyard.Address) (bool, error) {
	member, err := g.members.Get(memberKey{role, addr})
	if err != nil {
		return false, errors.Wrap(err, "failed to check role")
	}
	return member, nil
}

// Require fails with an authorization revert when the caller lacks the role.
func (g *Gate) Require(role Role, caller stakeyard.Address) error {
	ok, err := g.Has(role, caller)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Authorization(reverts.CodeNotAuthorized)
	}
	return nil
}
