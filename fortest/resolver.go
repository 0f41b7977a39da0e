// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fortest

import (
	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/token"
)

// Resolver maps addresses to in-memory ledgers.
type Resolver struct {
	fungibles   map[stakeyard.Address]token.Fungible
	collections map[stakeyard.Address]token.Collection
}

var _ token.Resolver = (*Resolver)(nil)

func NewResolver() *Resolver {
	return &Resolver{
		fungibles:   make(map[stakeyard.Address]token.Fungible),
		collections: make(map[stakeyard.Address]token.Collection),
	}
}

// AddFungible registers a divisible asset ledger.
func (r *Resolver) AddFungible(f token.Fungible) {
	r.fungibles[f.Address()] = f
}

// AddCollection registers a position ledger.
func (r *Resolver) AddCollection(c token.Collection) {
	r.collections[c.Address()] = c
}

func (r *Resolver) Fungible(addr stakeyard.Address) (token.Fungible, error) {
	f, ok := r.fungibles[addr]
	if !ok {
		return nil, errors.Errorf("unknown fungible asset %s", addr)
	}
	return f, nil
}

func (r *Resolver) Collection(addr stakeyard.Address) (token.Collection, error) {
	c, ok := r.collections[addr]
	if !ok {
		return nil, errors.Errorf("unknown collection %s", addr)
	}
	return c, nil
}
