// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slot provides solidity-style keyed storage accessors for ledger
// components. Values of one component live under a shared address, laid out
// by named slot positions.
package slot

import (
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
)

// Context binds storage accessors of one component to its address.
type Context struct {
	address stakeyard.Address
	state   *state.State
}

func NewContext(address stakeyard.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

// NameToSlot derives a slot position from a name.
func NameToSlot(name string) stakeyard.Bytes32 {
	return stakeyard.BytesToBytes32([]byte(name))
}
