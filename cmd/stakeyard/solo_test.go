// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeyard/stakeyard/api"
	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/state"
)

func newTestEnv(t *testing.T) *soloEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env, err := newSoloEnv(state.New(db))
	require.NoError(t, err)
	return env
}

func TestSoloEnvSeeding(t *testing.T) {
	env := newTestEnv(t)

	collections, err := env.pool.Collections()
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, env.nfts.Address(), collections[0])

	custody, err := env.pool.CustodyOf(env.nfts.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), custody)
}

func TestSoloPostReward(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.postReward(big.NewInt(1000), big.NewInt(300)))

	pending, err := env.pool.PendingRewards()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, big.NewInt(1000), pending[0].AmountA)
	assert.Equal(t, big.NewInt(300), pending[0].AmountB)
}

// API reads race the reward loop over the same state unless both go through
// the env lock. Hammer the serialized handler while rewards are posted; run
// with -race to catch any unguarded access.
func TestSoloSerializedAccess(t *testing.T) {
	env := newTestEnv(t)

	handler := env.serialize(api.New(env.pool, api.Options{AllowedOrigins: "*"}))
	srv := httptest.NewServer(handler)
	defer srv.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				res, err := http.Get(srv.URL + "/rewards/pending")
				if err != nil {
					t.Error(err)
					return
				}
				io.Copy(io.Discard, res.Body)
				res.Body.Close()
			}
		}()
	}

	amountA, amountB := big.NewInt(1000), big.NewInt(300)
	for i := 0; i < 20; i++ {
		require.NoError(t, env.postReward(amountA, amountB))
	}
	close(stop)
	wg.Wait()

	res, err := http.Get(srv.URL + "/rewards/pending")
	require.NoError(t, err)
	defer res.Body.Close()

	var pending []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&pending))
	assert.Len(t, pending, 20)
}
