// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
)

// readCache caches raw storage values read from the underlying store,
// keyed by storage slot.
type readCache struct {
	lru *lru.Cache
}

func newReadCache(maxSize int) *readCache {
	c, _ := lru.New(maxSize)
	return &readCache{lru: c}
}

// getOrLoad tries the cache first, loading and caching on a miss.
func (c *readCache) getOrLoad(key storageKey, load func() (rlp.RawValue, error)) (rlp.RawValue, error) {
	if v, ok := c.lru.Get(key); ok {
		return v.(rlp.RawValue), nil
	}
	raw, err := load()
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, raw)
	return raw, nil
}

func (c *readCache) add(key storageKey, raw rlp.RawValue) {
	c.lru.Add(key, raw)
}
