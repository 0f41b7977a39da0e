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

// PositionLedger is an in-memory position class implementing token.Collection.
// Safe transfers towards a registered receiver invoke its receipt callback.
type PositionLedger struct {
	addr      stakeyard.Address
	owners    map[string]stakeyard.Address
	byOwner   map[stakeyard.Address][]*big.Int
	approvals map[stakeyard.Address]map[stakeyard.Address]bool
	receivers map[stakeyard.Address]token.Receiver
}

var _ token.Collection = (*PositionLedger)(nil)

// NewPositionLedger creates an empty ledger at the given collection address.
func NewPositionLedger(addr stakeyard.Address) *PositionLedger {
	return &PositionLedger{
		addr:      addr,
		owners:    make(map[string]stakeyard.Address),
		byOwner:   make(map[stakeyard.Address][]*big.Int),
		approvals: make(map[stakeyard.Address]map[stakeyard.Address]bool),
		receivers: make(map[stakeyard.Address]token.Receiver),
	}
}

func (l *PositionLedger) Address() stakeyard.Address {
	return l.addr
}

// Mint creates a position owned by the given account.
func (l *PositionLedger) Mint(owner stakeyard.Address, id *big.Int) {
	l.owners[id.String()] = owner
	l.byOwner[owner] = append(l.byOwner[owner], new(big.Int).Set(id))
}

// SetApprovalForAll mirrors the standard operator approval.
func (l *PositionLedger) SetApprovalForAll(owner, operator stakeyard.Address, approved bool) {
	if l.approvals[owner] == nil {
		l.approvals[owner] = make(map[stakeyard.Address]bool)
	}
	l.approvals[owner][operator] = approved
}

// RegisterReceiver makes safe transfers to addr invoke the receipt callback.
func (l *PositionLedger) RegisterReceiver(addr stakeyard.Address, r token.Receiver) {
	l.receivers[addr] = r
}

// OwnerOf returns the current owner of the position.
func (l *PositionLedger) OwnerOf(id *big.Int) (stakeyard.Address, bool) {
	owner, ok := l.owners[id.String()]
	return owner, ok
}

func (l *PositionLedger) IsApprovedForAll(owner, operator stakeyard.Address) (bool, error) {
	return l.approvals[owner][operator], nil
}

func (l *PositionLedger) BalanceOf(owner stakeyard.Address) (*big.Int, error) {
	return big.NewInt(int64(len(l.byOwner[owner]))), nil
}

func (l *PositionLedger) TokenOfOwnerByIndex(owner stakeyard.Address, index uint64) (*big.Int, error) {
	held := l.byOwner[owner]
	if index >= uint64(len(held)) {
		return nil, errors.New("index out of range")
	}
	return new(big.Int).Set(held[index]), nil
}

func (l *PositionLedger) SafeTransferFrom(from, to stakeyard.Address, id *big.Int) error {
	owner, ok := l.owners[id.String()]
	if !ok {
		return errors.Errorf("position %s does not exist", id)
	}
	if owner != from {
		return errors.Errorf("position %s not owned by %s", id, from)
	}

	l.owners[id.String()] = to
	held := l.byOwner[from]
	for i, heldID := range held {
		if heldID.Cmp(id) == 0 {
			l.byOwner[from] = append(held[:i], held[i+1:]...)
			break
		}
	}
	l.byOwner[to] = append(l.byOwner[to], new(big.Int).Set(id))

	if r, ok := l.receivers[to]; ok {
		if err := r.OnPositionReceived(l.addr, from, from, id); err != nil {
			// receipt rejected, undo the move
			l.owners[id.String()] = from
			toHeld := l.byOwner[to]
			l.byOwner[to] = toHeld[:len(toHeld)-1]
			l.byOwner[from] = append(l.byOwner[from], new(big.Int).Set(id))
			return err
		}
	}
	return nil
}
