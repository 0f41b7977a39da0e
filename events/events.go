// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the observable records emitted by the pool.
package events

import (
	"math/big"
	"sync"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// Kind names an observable record type.
type Kind string

const (
	KindCollectionRegistered Kind = "collection-registered"
	KindDeposit              Kind = "deposit"
	KindWithdraw             Kind = "withdraw"
	KindEmergencyWithdraw    Kind = "emergency-withdraw"
	KindRewardPosted         Kind = "reward-posted"
	KindRewardSettled        Kind = "reward-settled"
	KindClaim                Kind = "claim"
	KindSweep                Kind = "admin-sweep"
)

// Event is one observable record. Fields not meaningful for a kind stay nil.
type Event struct {
	Kind       Kind
	Collection *stakeyard.Address
	User       *stakeyard.Address
	Position   *big.Int
	AmountA    *big.Int
	AmountB    *big.Int
	Timestamp  uint64
}

// Emitter receives records of completed operations.
type Emitter interface {
	Emit(Event)
}

// Discard is an Emitter dropping every record.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// MemSink is an in-memory Emitter, mainly for tests and the solo runtime.
type MemSink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemSink() *MemSink {
	return &MemSink{}
}

func (s *MemSink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// All returns a copy of every record received so far.
func (s *MemSink) All() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// OfKind returns received records of the given kind.
func (s *MemSink) OfKind(kind Kind) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
