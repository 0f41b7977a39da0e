// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fortest

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/token"
)

// FungibleLedger is an in-memory divisible asset implementing token.Fungible.
type FungibleLedger struct {
	addr     stakeyard.Address
	holder   stakeyard.Address
	balances map[stakeyard.Address]*big.Int

	// FailTransfers makes every transfer report failure, to exercise
	// transfer-abort paths.
	FailTransfers bool
}

var _ token.Fungible = (*FungibleLedger)(nil)

// NewFungibleLedger creates an empty ledger at the given asset address.
func NewFungibleLedger(addr stakeyard.Address) *FungibleLedger {
	return &FungibleLedger{
		addr:     addr,
		balances: make(map[stakeyard.Address]*big.Int),
	}
}

func (l *FungibleLedger) Address() stakeyard.Address {
	return l.addr
}

// Bind sets the account Transfer draws from. The pool binds its own address
// so payouts are booked against the pool's holdings.
func (l *FungibleLedger) Bind(holder stakeyard.Address) {
	l.holder = holder
}

// Mint credits the owner out of thin air.
func (l *FungibleLedger) Mint(owner stakeyard.Address, amount *big.Int) {
	l.balances[owner] = new(big.Int).Add(l.balanceOf(owner), amount)
}

func (l *FungibleLedger) balanceOf(owner stakeyard.Address) *big.Int {
	if bal, ok := l.balances[owner]; ok {
		return bal
	}
	return new(big.Int)
}

func (l *FungibleLedger) BalanceOf(owner stakeyard.Address) (*big.Int, error) {
	return new(big.Int).Set(l.balanceOf(owner)), nil
}

func (l *FungibleLedger) TransferFrom(from, to stakeyard.Address, amount *big.Int) (bool, error) {
	return l.move(from, to, amount)
}

func (l *FungibleLedger) Transfer(to stakeyard.Address, amount *big.Int) (bool, error) {
	from := l.holder
	if from.IsZero() {
		from = l.addr
	}
	return l.move(from, to, amount)
}

func (l *FungibleLedger) move(from, to stakeyard.Address, amount *big.Int) (bool, error) {
	if l.FailTransfers {
		return false, nil
	}
	if amount.Sign() < 0 {
		return false, errors.New("negative amount")
	}
	bal := l.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	l.balances[from] = new(big.Int).Sub(bal, amount)
	l.balances[to] = new(big.Int).Add(l.balanceOf(to), amount)
	return true, nil
}

// TransferBetween moves funds between two arbitrary accounts.
func (l *FungibleLedger) TransferBetween(from, to stakeyard.Address, amount *big.Int) (bool, error) {
	return l.move(from, to, amount)
}
