// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards keeps the pending reward queue and the lazy settlement
// engine that converts queued events into claimable user balances.
package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/log"
	"github.com/stakeyard/stakeyard/slot"
	"github.com/stakeyard/stakeyard/stakeyard"
)

var logger = log.WithContext("pkg", "rewards")

var (
	slotEvents   = slot.NameToSlot("reward-events")
	slotQueue    = slot.NameToSlot("reward-queue")
	slotSeq      = slot.NameToSlot("reward-seq")
	slotEligible = slot.NameToSlot("reward-eligible")
)

// Event is one posted reward. Eligibility is a point-in-time snapshot taken
// at posting; it only ever shrinks as users settle.
type Event struct {
	Timestamp  uint64
	Collection stakeyard.Address
	AmountA    *big.Int
	AmountB    *big.Int
}

// IsEmpty returns whether the event can be treated as empty.
func (e *Event) IsEmpty() bool {
	return e.AmountA == nil && e.AmountB == nil
}

// Service manages the pending reward queue. The queue is an unordered arena
// with swap-with-last removal; nothing may rely on FIFO order.
type Service struct {
	context *slot.Context
	events  *slot.Mapping[*big.Int, *Event]
	queue   *slot.Set[*big.Int]
	seq     *slot.Uint64
}

// New create a new instance.
func New(context *slot.Context) *Service {
	return &Service{
		context: context,
		events:  slot.NewMapping[*big.Int, *Event](context, slotEvents),
		queue:   slot.NewSet[*big.Int](context, slotQueue),
		seq:     slot.NewUint64(context, slotSeq),
	}
}

func (s *Service) eligible(seq *big.Int) *slot.Set[stakeyard.Address] {
	base := stakeyard.Blake2b(slotEligible.Bytes(), seq.Bytes())
	return slot.NewSet[stakeyard.Address](s.context, base)
}

// Post appends a reward event snapshotting the given eligible users.
// Precondition checks and the funding transfer are the caller's duty.
func (s *Service) Post(
	collection stakeyard.Address,
	amountA, amountB *big.Int,
	eligible []stakeyard.Address,
	timestamp uint64,
) (*big.Int, error) {
	n, err := s.seq.Inc()
	if err != nil {
		return nil, err
	}
	seq := new(big.Int).SetUint64(n)

	event := &Event{
		Timestamp:  timestamp,
		Collection: collection,
		AmountA:    amountA,
		AmountB:    amountB,
	}
	if err := s.events.Set(seq, event); err != nil {
		return nil, errors.Wrap(err, "failed to set reward event")
	}

	eligibleSet := s.eligible(seq)
	for _, user := range eligible {
		if _, err := eligibleSet.Add(user); err != nil {
			return nil, err
		}
	}

	if _, err := s.queue.Add(seq); err != nil {
		return nil, err
	}

	logger.Debug("posted reward event",
		"seq", seq,
		"collection", collection,
		"eligible", len(eligible),
	)
	return seq, nil
}

// Get returns the queued event for a sequence number.
func (s *Service) Get(seq *big.Int) (*Event, error) {
	event, err := s.events.Get(seq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward event")
	}
	return event, nil
}

// Pending lists the sequence numbers of all queued events, in arena order.
func (s *Service) Pending() ([]*big.Int, error) {
	return s.queue.All()
}

// PendingLen returns the number of queued events.
func (s *Service) PendingLen() (uint64, error) {
	return s.queue.Len()
}

// EligibleUsers lists the users still eligible to draw from the event.
func (s *Service) EligibleUsers(seq *big.Int) ([]stakeyard.Address, error) {
	return s.eligible(seq).All()
}

// IsEligible returns whether the user may still draw from the event.
func (s *Service) IsEligible(seq *big.Int, user stakeyard.Address) (bool, error) {
	return s.eligible(seq).Contains(user)
}

// settleUser drops the user from the event's snapshot; when the snapshot
// empties, the event is removed from the queue by swap-with-last.
// Returns whether the event was removed.
func (s *Service) settleUser(seq *big.Int, user stakeyard.Address) (bool, error) {
	eligibleSet := s.eligible(seq)
	if _, err := eligibleSet.Remove(user); err != nil {
		return false, err
	}

	left, err := eligibleSet.Len()
	if err != nil {
		return false, err
	}
	if left > 0 {
		return false, nil
	}

	if err := s.events.Clear(seq); err != nil {
		return false, errors.Wrap(err, "failed to clear reward event")
	}
	if _, err := s.queue.Remove(seq); err != nil {
		return false, err
	}
	return true, nil
}
