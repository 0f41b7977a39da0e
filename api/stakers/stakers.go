// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/api/utils"
	"github.com/stakeyard/stakeyard/pool"
	"github.com/stakeyard/stakeyard/stakeyard"
)

type Stakers struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Stakers {
	return &Stakers{pool: p}
}

// Staker is the JSON view of one user's ledger entry.
type Staker struct {
	Address     stakeyard.Address   `json:"address"`
	ClaimableA  *big.Int            `json:"claimableA"`
	ClaimableB  *big.Int            `json:"claimableB"`
	StakeCount  uint64              `json:"stakeCount"`
	Collections []stakeyard.Address `json:"collections"`
}

// Positions is the JSON view of one user's stake in one collection.
type Positions struct {
	Collection stakeyard.Address `json:"collection"`
	IDs        []*big.Int        `json:"ids"`
}

func (s *Stakers) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := stakeyard.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	claimableA, claimableB, err := s.pool.ClaimableOf(*addr)
	if err != nil {
		return err
	}
	count, err := s.pool.StakeCountOf(*addr)
	if err != nil {
		return err
	}
	colls, err := s.pool.CollectionsOf(*addr)
	if err != nil {
		return err
	}
	if colls == nil {
		colls = []stakeyard.Address{}
	}

	return utils.WriteJSON(w, &Staker{
		Address:     *addr,
		ClaimableA:  claimableA,
		ClaimableB:  claimableB,
		StakeCount:  count,
		Collections: colls,
	})
}

func (s *Stakers) handleGetPositions(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	addr, err := stakeyard.ParseAddress(vars["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	collection, err := stakeyard.ParseAddress(vars["collection"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "collection"))
	}

	ids, err := s.pool.PositionsOf(*addr, *collection)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []*big.Int{}
	}
	return utils.WriteJSON(w, &Positions{
		Collection: *collection,
		IDs:        ids,
	})
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetStaker))
	sub.Path("/{address}/positions/{collection}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleGetPositions))
}
