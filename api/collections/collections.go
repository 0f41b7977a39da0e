// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collections

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/api/utils"
	"github.com/stakeyard/stakeyard/pool"
	"github.com/stakeyard/stakeyard/stakeyard"
)

type Collections struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Collections {
	return &Collections{pool: p}
}

// Collection is the JSON view of one registered collection.
type Collection struct {
	Address       stakeyard.Address `json:"address"`
	AcceptsReward bool              `json:"acceptsReward"`
	Custody       uint64            `json:"custody"`
}

func (c *Collections) view(addr stakeyard.Address) (*Collection, error) {
	entry, err := c.pool.CollectionInfo(addr)
	if err != nil {
		return nil, err
	}
	if !entry.Listed {
		return nil, nil
	}
	custody, err := c.pool.CustodyOf(addr)
	if err != nil {
		return nil, err
	}
	return &Collection{
		Address:       addr,
		AcceptsReward: entry.AcceptsReward,
		Custody:       custody,
	}, nil
}

func (c *Collections) handleGetCollections(w http.ResponseWriter, _ *http.Request) error {
	addrs, err := c.pool.Collections()
	if err != nil {
		return err
	}
	out := make([]*Collection, 0, len(addrs))
	for _, addr := range addrs {
		view, err := c.view(addr)
		if err != nil {
			return err
		}
		out = append(out, view)
	}
	return utils.WriteJSON(w, out)
}

func (c *Collections) handleGetCollection(w http.ResponseWriter, req *http.Request) error {
	addr, err := stakeyard.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	view, err := c.view(*addr)
	if err != nil {
		return err
	}
	if view == nil {
		return utils.NotFound(errors.New("no such collection"))
	}
	return utils.WriteJSON(w, view)
}

func (c *Collections) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetCollections))
	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(c.handleGetCollection))
}
