// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token declares the asset collaborator interfaces the pool consumes.
// Custody primitives live outside the pool; these interfaces are the whole
// contract between the two.
package token

import (
	"math/big"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// Fungible is the transfer surface of a divisible reward asset.
// A false return or an error both mean the transfer did not happen.
type Fungible interface {
	Address() stakeyard.Address
	TransferFrom(from, to stakeyard.Address, amount *big.Int) (bool, error)
	Transfer(to stakeyard.Address, amount *big.Int) (bool, error)
	BalanceOf(owner stakeyard.Address) (*big.Int, error)
}

// Collection is the custody surface of one non-fungible position class.
type Collection interface {
	Address() stakeyard.Address
	SafeTransferFrom(from, to stakeyard.Address, id *big.Int) error
	BalanceOf(owner stakeyard.Address) (*big.Int, error)
	IsApprovedForAll(owner, operator stakeyard.Address) (bool, error)
	TokenOfOwnerByIndex(owner stakeyard.Address, index uint64) (*big.Int, error)
}

// Receiver is the standard receipt callback for incoming positions.
// Implementors must reject transfers they did not expect.
type Receiver interface {
	OnPositionReceived(collection, operator, from stakeyard.Address, id *big.Int) error
}

// Resolver looks collaborators up by their address.
type Resolver interface {
	Fungible(addr stakeyard.Address) (Fungible, error)
	Collection(addr stakeyard.Address) (Collection, error)
}
