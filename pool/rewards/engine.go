// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/stakeyard"
)

// Ledger is the slice of the user ledger the engine needs.
type Ledger interface {
	HoldingCount(user, collection stakeyard.Address) (uint64, error)
	Credit(user stakeyard.Address, amountA, amountB *big.Int) error
}

// Settlement records one settled event for a user.
type Settlement struct {
	Seq        *big.Int
	Collection stakeyard.Address
	AmountA    *big.Int
	AmountB    *big.Int
}

// Engine walks the pending queue for a user and migrates owed amounts into
// the user's claimable balances.
type Engine struct {
	queue  *Service
	ledger Ledger
}

// NewEngine create a new instance.
func NewEngine(queue *Service, ledger Ledger) *Engine {
	return &Engine{queue: queue, ledger: ledger}
}

// Settle converts every event still listing the user into claimable balance.
//
// The per-position share divides by the user's holding count AT SETTLEMENT
// TIME, and the owed amount multiplies the share by that same count. The
// credited amount is therefore the event's full posted amount minus integer
// truncation dust, independent of how many other users share the event. The
// ledger inherits this arithmetic deliberately; the total paid out across all
// eligible users of one event can exceed the posted amount.
//
// Settling with zero matching events is a no-op. A zero holding count for a
// still-eligible event (possible after an emergency withdrawal) aborts the
// whole pass with an arithmetic fault.
func (e *Engine) Settle(user stakeyard.Address) ([]Settlement, error) {
	n, err := e.queue.PendingLen()
	if err != nil {
		return nil, err
	}

	var settled []Settlement
	for i := uint64(0); i < n; {
		seq, err := e.queue.queue.At(i)
		if err != nil {
			return nil, err
		}

		eligible, err := e.queue.IsEligible(seq, user)
		if err != nil {
			return nil, err
		}
		if !eligible {
			i++
			continue
		}

		event, err := e.queue.Get(seq)
		if err != nil {
			return nil, err
		}

		holding, err := e.ledger.HoldingCount(user, event.Collection)
		if err != nil {
			return nil, err
		}
		if holding == 0 {
			logger.Warn("settlement hit zero divisor",
				"user", user,
				"seq", seq,
				"collection", event.Collection,
			)
			return nil, reverts.Arithmetic(reverts.CodeZeroDivisor)
		}

		owedA := owedAmount(event.AmountA, holding)
		owedB := owedAmount(event.AmountB, holding)
		if err := e.ledger.Credit(user, owedA, owedB); err != nil {
			return nil, err
		}

		removed, err := e.queue.settleUser(seq, user)
		if err != nil {
			return nil, err
		}
		settled = append(settled, Settlement{
			Seq:        seq,
			Collection: event.Collection,
			AmountA:    owedA,
			AmountB:    owedB,
		})

		if removed {
			// swap-with-last moved another event into slot i
			n--
		} else {
			i++
		}
	}
	return settled, nil
}

// owedAmount computes the credited amount: per-position share times holding
// count. The truncation remainder is dust and is never carried forward.
func owedAmount(amount *big.Int, holding uint64) *big.Int {
	if amount == nil || amount.Sign() == 0 {
		return new(big.Int)
	}
	divisor := new(big.Int).SetUint64(holding)
	share := new(big.Int).Quo(amount, divisor)
	return share.Mul(share, divisor)
}
