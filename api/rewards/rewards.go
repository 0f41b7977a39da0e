// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stakeyard/stakeyard/api/utils"
	"github.com/stakeyard/stakeyard/pool"
	"github.com/stakeyard/stakeyard/stakeyard"
)

type Rewards struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Rewards {
	return &Rewards{pool: p}
}

// PendingReward is the JSON view of one queued, not-yet-fully-settled
// reward event.
type PendingReward struct {
	Collection stakeyard.Address `json:"collection"`
	AmountA    *big.Int          `json:"amountA"`
	AmountB    *big.Int          `json:"amountB"`
	Timestamp  uint64            `json:"timestamp"`
}

func (r *Rewards) handleGetPending(w http.ResponseWriter, _ *http.Request) error {
	events, err := r.pool.PendingRewards()
	if err != nil {
		return err
	}
	out := make([]*PendingReward, 0, len(events))
	for _, ev := range events {
		out = append(out, &PendingReward{
			Collection: ev.Collection,
			AmountA:    ev.AmountA,
			AmountB:    ev.AmountB,
			Timestamp:  ev.Timestamp,
		})
	}
	return utils.WriteJSON(w, out)
}

func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pending").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(r.handleGetPending))
}
