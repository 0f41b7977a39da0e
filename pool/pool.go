// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the shared staking ledger. Independent parties
// stake non-fungible positions per collection and draw proportional shares
// of posted rewards in two fungible assets. Rewards settle lazily: any
// user-triggered action first migrates pending reward events into the user's
// claimable balances, then mutates stake.
package pool

import (
	"math/big"
	"time"

	"github.com/stakeyard/stakeyard/auth"
	"github.com/stakeyard/stakeyard/events"
	"github.com/stakeyard/stakeyard/log"
	"github.com/stakeyard/stakeyard/metrics"
	"github.com/stakeyard/stakeyard/pool/registry"
	"github.com/stakeyard/stakeyard/pool/reverts"
	"github.com/stakeyard/stakeyard/pool/rewards"
	"github.com/stakeyard/stakeyard/pool/users"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
	"github.com/stakeyard/stakeyard/token"
)

var logger = log.WithContext("pkg", "pool")

var (
	slotAssetA = slot.NameToSlot("reward-asset-a")
	slotAssetB = slot.NameToSlot("reward-asset-b")
)

var (
	metricDeposits    = metrics.LazyLoadCounter("pool_deposits_total")
	metricWithdrawals = metrics.LazyLoadCounter("pool_withdrawals_total")
	metricRewardPosts = metrics.LazyLoadCounter("pool_reward_posts_total")
	metricSettlements = metrics.LazyLoadCounter("pool_settlements_total")
	metricClaims      = metrics.LazyLoadCounter("pool_claims_total")
	metricRollbacks   = metrics.LazyLoadCounter("pool_rollbacks_total")
)

// Pool is the ledger facade. Every exported mutating method runs as a single
// atomic unit: it either commits its entire effect to the state journal or
// reverts to the entry checkpoint. A reentrancy flag guards against callbacks
// re-entering during outbound transfers.
type Pool struct {
	addr  stakeyard.Address
	state *state.State

	gate     *auth.Gate
	registry *registry.Service
	users    *users.Service
	queue    *rewards.Service
	engine   *rewards.Engine

	assetA *slot.Address
	assetB *slot.Address

	resolver token.Resolver
	emitter  events.Emitter
	now      func() uint64

	entered bool
}

// Options tunes pool construction.
type Options struct {
	// Emitter receives observable records of completed operations.
	// Nil discards them.
	Emitter events.Emitter
	// Now supplies event timestamps. Nil uses wall-clock seconds.
	Now func() uint64
}

// New creates a pool bound to its custody address and backing state.
func New(addr stakeyard.Address, st *state.State, resolver token.Resolver, opts Options) *Pool {
	context := slot.NewContext(addr, st)

	userLedger := users.New(context)
	queue := rewards.New(context)

	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.Discard
	}
	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	return &Pool{
		addr:     addr,
		state:    st,
		gate:     auth.New(context),
		registry: registry.New(context),
		users:    userLedger,
		queue:    queue,
		engine:   rewards.NewEngine(queue, userLedger),
		assetA:   slot.NewAddress(context, slotAssetA),
		assetB:   slot.NewAddress(context, slotAssetB),
		resolver: resolver,
		emitter:  emitter,
		now:      now,
	}
}

// Address returns the pool's custody address.
func (p *Pool) Address() stakeyard.Address {
	return p.addr
}

// Gate exposes the role gate for bootstrap wiring.
func (p *Pool) Gate() *auth.Gate {
	return p.gate
}

// run executes fn as one atomic unit. Emitted records are buffered and only
// flushed after fn succeeds, so a rolled-back call leaves no trace.
func (p *Pool) run(fn func(buf *eventBuffer) error) error {
	if p.entered {
		return reverts.Precondition(reverts.CodeReentrancy)
	}
	p.entered = true
	defer func() { p.entered = false }()

	checkpoint := p.state.NewCheckpoint()
	buf := &eventBuffer{}
	if err := fn(buf); err != nil {
		p.state.RevertTo(checkpoint)
		metricRollbacks().Add(1)
		return err
	}
	buf.flush(p.emitter)
	return nil
}

type eventBuffer struct {
	pending []events.Event
}

func (b *eventBuffer) add(ev events.Event) {
	b.pending = append(b.pending, ev)
}

func (b *eventBuffer) flush(emitter events.Emitter) {
	for _, ev := range b.pending {
		emitter.Emit(ev)
	}
}

//
// Privileged operations
//

// AddCollection registers a new staking collection.
func (p *Pool) AddCollection(caller, collection stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}
		if _, err := p.resolver.Collection(collection); err != nil {
			return reverts.Precondition(reverts.CodeUnknownCollection)
		}
		if err := p.registry.Add(collection); err != nil {
			return err
		}

		logger.Info("registered collection", "collection", collection)
		buf.add(events.Event{
			Kind:       events.KindCollectionRegistered,
			Collection: &collection,
			Timestamp:  p.now(),
		})
		return nil
	})
}

// SetAcceptsReward toggles whether a collection accepts new reward postings.
func (p *Pool) SetAcceptsReward(caller, collection stakeyard.Address, accepts bool) error {
	return p.run(func(*eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}
		return p.registry.SetAcceptsReward(collection, accepts)
	})
}

// SetRewardAssets configures the two reward asset addresses.
// A zero address leaves the corresponding asset unconfigured.
func (p *Pool) SetRewardAssets(caller, assetA, assetB stakeyard.Address) error {
	return p.run(func(*eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}
		p.assetA.Set(assetA)
		p.assetB.Set(assetB)
		logger.Info("configured reward assets", "assetA", assetA, "assetB", assetB)
		return nil
	})
}

// GrantRole adds an address to a role.
func (p *Pool) GrantRole(caller stakeyard.Address, role auth.Role, addr stakeyard.Address) error {
	return p.run(func(*eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}
		return p.gate.Grant(role, addr)
	})
}

// RevokeRole removes an address from a role.
func (p *Pool) RevokeRole(caller stakeyard.Address, role auth.Role, addr stakeyard.Address) error {
	return p.run(func(*eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}
		return p.gate.Revoke(role, addr)
	})
}

// Sweep transfers the pool's whole balance of an unrelated fungible token.
// Configured reward assets cannot be swept.
func (p *Pool) Sweep(caller, asset, to stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.gate.Require(auth.RoleAdmin, caller); err != nil {
			return err
		}

		for _, configured := range []*slot.Address{p.assetA, p.assetB} {
			addr, err := configured.Get()
			if err != nil {
				return err
			}
			if !addr.IsZero() && addr == asset {
				return reverts.Precondition(reverts.CodeSweepRewardAsset)
			}
		}

		fungible, err := p.resolver.Fungible(asset)
		if err != nil {
			return reverts.Precondition(reverts.CodeAssetNotConfigured)
		}
		balance, err := fungible.BalanceOf(p.addr)
		if err != nil {
			return err
		}
		if balance.Sign() > 0 {
			ok, err := fungible.Transfer(to, balance)
			if err != nil {
				return err
			}
			if !ok {
				return reverts.Transfer(reverts.CodeTransferFailed)
			}
		}

		logger.Info("swept token", "asset", asset, "to", to, "amount", balance)
		buf.add(events.Event{
			Kind:      events.KindSweep,
			User:      &to,
			AmountA:   balance,
			Timestamp: p.now(),
		})
		return nil
	})
}

// PostReward posts a reward against a collection, snapshotting the users
// currently staked in it. Both amounts are pulled from the caller.
func (p *Pool) PostReward(caller, collection stakeyard.Address, amountA, amountB *big.Int) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.gate.Require(auth.RoleRewarder, caller); err != nil {
			return err
		}

		accepts, err := p.registry.AcceptsReward(collection)
		if err != nil {
			return err
		}
		if !accepts {
			listed, err := p.registry.IsListed(collection)
			if err != nil {
				return err
			}
			if !listed {
				return reverts.Precondition(reverts.CodeUnknownCollection)
			}
			return reverts.Precondition(reverts.CodeRewardDisabled)
		}

		custody, err := p.users.Custody(collection)
		if err != nil {
			return err
		}
		if custody == 0 {
			return reverts.Precondition(reverts.CodeNoStake)
		}
		if amountA.Sign() < 0 || amountB.Sign() < 0 {
			return reverts.Precondition(reverts.CodeNegativeReward)
		}
		if amountA.Sign() == 0 && amountB.Sign() == 0 {
			return reverts.Precondition(reverts.CodeNoReward)
		}

		if err := p.pullReward(caller, p.assetA, amountA); err != nil {
			return err
		}
		if err := p.pullReward(caller, p.assetB, amountB); err != nil {
			return err
		}

		eligible, err := p.users.Stakers(collection)
		if err != nil {
			return err
		}
		seq, err := p.queue.Post(collection, amountA, amountB, eligible, p.now())
		if err != nil {
			return err
		}

		metricRewardPosts().Add(1)
		logger.Info("posted reward",
			"collection", collection,
			"seq", seq,
			"amountA", amountA,
			"amountB", amountB,
			"eligible", len(eligible),
		)
		buf.add(events.Event{
			Kind:       events.KindRewardPosted,
			Collection: &collection,
			AmountA:    amountA,
			AmountB:    amountB,
			Timestamp:  p.now(),
		})
		return nil
	})
}

// pullReward draws a posted amount from the rewarder into pool custody.
func (p *Pool) pullReward(from stakeyard.Address, configured *slot.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	addr, err := configured.Get()
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.Precondition(reverts.CodeAssetNotConfigured)
	}
	fungible, err := p.resolver.Fungible(addr)
	if err != nil {
		return reverts.Precondition(reverts.CodeAssetNotConfigured)
	}
	ok, err := fungible.TransferFrom(from, p.addr, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Transfer(reverts.CodeTransferFailed)
	}
	return nil
}

//
// User operations
//

// Deposit stakes one position. Pending rewards are settled before the stake
// mutation, so events still queued divide by the pre-deposit holding count.
func (p *Pool) Deposit(caller, collection stakeyard.Address, id *big.Int) error {
	return p.run(func(buf *eventBuffer) error {
		return p.depositOne(buf, caller, collection, id)
	})
}

// DepositAllOf stakes every position of the collection the caller holds.
// It is plain sequential application of the single-item deposit.
func (p *Pool) DepositAllOf(caller, collection stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		return p.depositHeld(buf, caller, collection)
	})
}

// DepositAll stakes the caller's positions of every reward-accepting
// registered collection.
func (p *Pool) DepositAll(caller stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		all, err := p.registry.All()
		if err != nil {
			return err
		}
		for _, collection := range all {
			accepts, err := p.registry.AcceptsReward(collection)
			if err != nil {
				return err
			}
			if !accepts {
				continue
			}
			if err := p.depositHeld(buf, caller, collection); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Pool) depositHeld(buf *eventBuffer, caller, collection stakeyard.Address) error {
	coll, err := p.resolver.Collection(collection)
	if err != nil {
		return reverts.Precondition(reverts.CodeUnknownCollection)
	}
	balance, err := coll.BalanceOf(caller)
	if err != nil {
		return err
	}
	// the owner's enumeration shifts as positions move out, so always
	// take the first remaining one
	for i := balance.Uint64(); i > 0; i-- {
		id, err := coll.TokenOfOwnerByIndex(caller, 0)
		if err != nil {
			return err
		}
		if err := p.depositOne(buf, caller, collection, id); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) depositOne(buf *eventBuffer, caller, collection stakeyard.Address, id *big.Int) error {
	accepts, err := p.registry.AcceptsReward(collection)
	if err != nil {
		return err
	}
	if !accepts {
		listed, err := p.registry.IsListed(collection)
		if err != nil {
			return err
		}
		if !listed {
			return reverts.Precondition(reverts.CodeUnknownCollection)
		}
		return reverts.Precondition(reverts.CodeRewardDisabled)
	}

	coll, err := p.resolver.Collection(collection)
	if err != nil {
		return reverts.Precondition(reverts.CodeUnknownCollection)
	}
	approved, err := coll.IsApprovedForAll(caller, p.addr)
	if err != nil {
		return err
	}
	if !approved {
		return reverts.Precondition(reverts.CodeNotApproved)
	}

	// settlement first: a pending event's divisor must reflect the
	// pre-deposit holding count
	if err := p.settle(buf, caller); err != nil {
		return err
	}

	if err := coll.SafeTransferFrom(caller, p.addr, id); err != nil {
		return reverts.Transfer(reverts.CodeTransferFailed)
	}
	if err := p.users.AddPosition(caller, collection, id); err != nil {
		return err
	}

	metricDeposits().Add(1)
	logger.Debug("deposit", "user", caller, "collection", collection, "id", id)
	buf.add(events.Event{
		Kind:       events.KindDeposit,
		Collection: &collection,
		User:       &caller,
		Position:   id,
		Timestamp:  p.now(),
	})
	return nil
}

// Withdraw unstakes one position. Settlement runs first for the same reason
// as deposit: the divisor of any still-pending event must reflect holdings
// before the removal.
func (p *Pool) Withdraw(caller, collection stakeyard.Address, id *big.Int) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.settle(buf, caller); err != nil {
			return err
		}
		return p.withdrawOne(buf, caller, collection, id)
	})
}

// WithdrawAllOf unstakes every position of one collection.
func (p *Pool) WithdrawAllOf(caller, collection stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.settle(buf, caller); err != nil {
			return err
		}
		ids, err := p.users.Positions(caller, collection)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := p.withdrawOne(buf, caller, collection, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithdrawAll unstakes every position of every collection.
func (p *Pool) WithdrawAll(caller stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		if err := p.settle(buf, caller); err != nil {
			return err
		}
		collections, err := p.users.Collections(caller)
		if err != nil {
			return err
		}
		for _, collection := range collections {
			ids, err := p.users.Positions(caller, collection)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := p.withdrawOne(buf, caller, collection, id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (p *Pool) withdrawOne(buf *eventBuffer, caller, collection stakeyard.Address, id *big.Int) error {
	if err := p.users.RemovePosition(caller, collection, id); err != nil {
		return err
	}

	coll, err := p.resolver.Collection(collection)
	if err != nil {
		return reverts.Precondition(reverts.CodeUnknownCollection)
	}
	if err := coll.SafeTransferFrom(p.addr, caller, id); err != nil {
		return reverts.Transfer(reverts.CodeTransferFailed)
	}

	metricWithdrawals().Add(1)
	logger.Debug("withdraw", "user", caller, "collection", collection, "id", id)
	buf.add(events.Event{
		Kind:       events.KindWithdraw,
		Collection: &collection,
		User:       &caller,
		Position:   id,
		Timestamp:  p.now(),
	})
	return nil
}

// EmergencyWithdraw returns every custodied position to the caller WITHOUT
// settling. Claimable balances stay untouched. Any still-pending event that
// lists the caller as eligible will later divide by a zero holding count and
// fault, for every user sharing that event. There is no recovery path; the
// ledger reproduces this failure mode deliberately.
func (p *Pool) EmergencyWithdraw(caller stakeyard.Address) error {
	return p.run(func(buf *eventBuffer) error {
		collections, err := p.users.Collections(caller)
		if err != nil {
			return err
		}
		var returned uint64
		for _, collection := range collections {
			coll, err := p.resolver.Collection(collection)
			if err != nil {
				return reverts.Precondition(reverts.CodeUnknownCollection)
			}
			ids, err := p.users.Positions(caller, collection)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := p.users.RemovePosition(caller, collection, id); err != nil {
					return err
				}
				if err := coll.SafeTransferFrom(p.addr, caller, id); err != nil {
					return reverts.Transfer(reverts.CodeTransferFailed)
				}
				returned++
			}
		}

		logger.Warn("emergency withdraw", "user", caller, "returned", returned)
		buf.add(events.Event{
			Kind:      events.KindEmergencyWithdraw,
			User:      &caller,
			Timestamp: p.now(),
		})
		return nil
	})
}

// Claim settles the caller and pays out both claimable balances.
// A claim with nothing pending is a valid, observable no-op.
func (p *Pool) Claim(caller stakeyard.Address) (*big.Int, *big.Int, error) {
	var claimedA, claimedB *big.Int
	err := p.run(func(buf *eventBuffer) error {
		if err := p.settle(buf, caller); err != nil {
			return err
		}

		owedA, owedB, err := p.users.ResetClaimables(caller)
		if err != nil {
			return err
		}
		if err := p.payout(p.assetA, caller, owedA); err != nil {
			return err
		}
		if err := p.payout(p.assetB, caller, owedB); err != nil {
			return err
		}
		claimedA, claimedB = owedA, owedB

		metricClaims().Add(1)
		logger.Info("claim", "user", caller, "amountA", owedA, "amountB", owedB)
		buf.add(events.Event{
			Kind:      events.KindClaim,
			User:      &caller,
			AmountA:   owedA,
			AmountB:   owedB,
			Timestamp: p.now(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return claimedA, claimedB, nil
}

func (p *Pool) payout(configured *slot.Address, to stakeyard.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	addr, err := configured.Get()
	if err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.Precondition(reverts.CodeAssetNotConfigured)
	}
	fungible, err := p.resolver.Fungible(addr)
	if err != nil {
		return reverts.Precondition(reverts.CodeAssetNotConfigured)
	}
	ok, err := fungible.Transfer(to, amount)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Transfer(reverts.CodeTransferFailed)
	}
	return nil
}

// settle runs the distribution engine for the user and buffers one settled
// record per consumed event.
func (p *Pool) settle(buf *eventBuffer, user stakeyard.Address) error {
	settled, err := p.engine.Settle(user)
	if err != nil {
		return err
	}
	for _, s := range settled {
		metricSettlements().Add(1)
		buf.add(events.Event{
			Kind:       events.KindRewardSettled,
			Collection: &s.Collection,
			User:       &user,
			AmountA:    s.AmountA,
			AmountB:    s.AmountB,
			Timestamp:  p.now(),
		})
	}
	return nil
}

//
// Views
//

// Collections returns every registered collection address.
func (p *Pool) Collections() ([]stakeyard.Address, error) {
	return p.registry.All()
}

// CollectionInfo returns the registry entry for a collection.
func (p *Pool) CollectionInfo(collection stakeyard.Address) (*registry.Entry, error) {
	return p.registry.Get(collection)
}

// RewardAssets returns the configured reward asset addresses.
func (p *Pool) RewardAssets() (stakeyard.Address, stakeyard.Address, error) {
	a, err := p.assetA.Get()
	if err != nil {
		return stakeyard.Address{}, stakeyard.Address{}, err
	}
	b, err := p.assetB.Get()
	if err != nil {
		return stakeyard.Address{}, stakeyard.Address{}, err
	}
	return a, b, nil
}

// ClaimableOf returns the user's settled-but-unclaimed balances. It does NOT
// run settlement, so still-queued events are not reflected.
func (p *Pool) ClaimableOf(user stakeyard.Address) (*big.Int, *big.Int, error) {
	entry, err := p.users.GetEntry(user)
	if err != nil {
		return nil, nil, err
	}
	return entry.ClaimableA, entry.ClaimableB, nil
}

// StakeCountOf returns the user's total staked position count.
func (p *Pool) StakeCountOf(user stakeyard.Address) (uint64, error) {
	entry, err := p.users.GetEntry(user)
	if err != nil {
		return 0, err
	}
	return entry.StakeCount, nil
}

// PositionsOf returns the ids the user has staked in a collection.
func (p *Pool) PositionsOf(user, collection stakeyard.Address) ([]*big.Int, error) {
	return p.users.Positions(user, collection)
}

// CollectionsOf returns the collections the user currently stakes in.
func (p *Pool) CollectionsOf(user stakeyard.Address) ([]stakeyard.Address, error) {
	return p.users.Collections(user)
}

// CustodyOf returns how many positions of a collection the pool custodies.
func (p *Pool) CustodyOf(collection stakeyard.Address) (uint64, error) {
	return p.users.Custody(collection)
}

// PendingRewards returns the queued, not-yet-fully-settled reward events.
func (p *Pool) PendingRewards() ([]*rewards.Event, error) {
	seqs, err := p.queue.Pending()
	if err != nil {
		return nil, err
	}
	out := make([]*rewards.Event, 0, len(seqs))
	for _, seq := range seqs {
		event, err := p.queue.Get(seq)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

// OnPositionReceived implements the standard receipt callback. Positions of
// unregistered collections are rejected.
func (p *Pool) OnPositionReceived(collection, _, _ stakeyard.Address, _ *big.Int) error {
	listed, err := p.registry.IsListed(collection)
	if err != nil {
		return err
	}
	if !listed {
		return reverts.Precondition(reverts.CodeUnknownCollection)
	}
	return nil
}
