// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeyard/stakeyard/api"
	"github.com/stakeyard/stakeyard/auth"
	"github.com/stakeyard/stakeyard/events"
	"github.com/stakeyard/stakeyard/fortest"
	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/metrics"
	"github.com/stakeyard/stakeyard/pool"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
)

func soloAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		fatal(err)
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		srv, err := startMetricsServer(cfg.MetricsAddr)
		if err != nil {
			fatal("start metrics server:", err)
		}
		defer shutdownServer(srv)
	}

	var db *lvldb.LevelDB
	if ctx.Bool(persistFlag.Name) {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			fatal("create data dir:", err)
		}
		db, err = lvldb.New(filepath.Join(cfg.DataDir, "solo.db"), lvldb.Options{})
	} else {
		db, err = lvldb.NewMem()
	}
	if err != nil {
		fatal("open ledger database:", err)
	}
	defer func() { logger.Info("closing ledger database..."); db.Close() }()

	st := state.New(db)
	env, err := newSoloEnv(st)
	if err != nil {
		fatal(err)
	}

	apiSrv, apiURL, err := startAPIServer(cfg.APIAddr, env.serialize(api.New(env.pool, api.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: true,
	})))
	if err != nil {
		fatal("start API server:", err)
	}
	defer func() { logger.Info("stopping API server..."); shutdownServer(apiSrv) }()

	logger.Info("solo pool started",
		"pool", env.pool.Address(),
		"api", apiURL,
		"collection", env.nfts.Address(),
	)

	exitCtx := handleExitSignal()
	if interval := ctx.Uint64(rewardIntervalFlag.Name); interval > 0 {
		go env.rewardLoop(exitCtx, time.Duration(interval)*time.Second)
	}

	<-exitCtx.Done()
	return nil
}

// soloEnv is a self-contained pool with in-process asset ledgers and a few
// pre-staked demo accounts.
//
// The pool and its backing state are not safe for concurrent use, so the
// reward loop and every API request take mu before touching them.
type soloEnv struct {
	mu     sync.Mutex
	state  *state.State
	pool   *pool.Pool
	sink   *events.MemSink
	assetA *fortest.FungibleLedger
	assetB *fortest.FungibleLedger
	nfts   *fortest.PositionLedger

	rewarder stakeyard.Address
}

// serialize funnels API requests through the env lock so reads never overlap
// with the reward loop's writes.
func (e *soloEnv) serialize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		defer e.mu.Unlock()
		next(w, r)
	}
}

func newSoloEnv(st *state.State) (*soloEnv, error) {
	poolAddr := stakeyard.BytesToAddress([]byte("stakeyard-solo-pool"))
	admin := fortest.Accounts[0]
	rewarder := fortest.Accounts[1]

	assetA := fortest.NewFungibleLedger(stakeyard.BytesToAddress([]byte("solo-asset-a")))
	assetB := fortest.NewFungibleLedger(stakeyard.BytesToAddress([]byte("solo-asset-b")))
	assetA.Bind(poolAddr)
	assetB.Bind(poolAddr)
	nfts := fortest.NewPositionLedger(stakeyard.BytesToAddress([]byte("solo-nfts")))

	resolver := fortest.NewResolver()
	resolver.AddFungible(assetA)
	resolver.AddFungible(assetB)
	resolver.AddCollection(nfts)

	sink := events.NewMemSink()
	p := pool.New(poolAddr, st, resolver, pool.Options{Emitter: sink})
	nfts.RegisterReceiver(poolAddr, p)

	if err := p.Gate().Grant(auth.RoleAdmin, admin); err != nil {
		return nil, err
	}
	if err := p.AddCollection(admin, nfts.Address()); err != nil {
		return nil, err
	}
	if err := p.SetRewardAssets(admin, assetA.Address(), assetB.Address()); err != nil {
		return nil, err
	}
	if err := p.GrantRole(admin, auth.RoleRewarder, rewarder); err != nil {
		return nil, err
	}

	// three demo stakers with one position each
	var id int64
	for _, user := range fortest.Accounts[2:5] {
		id++
		nfts.Mint(user, big.NewInt(id))
		nfts.SetApprovalForAll(user, poolAddr, true)
		if err := p.Deposit(user, nfts.Address(), big.NewInt(id)); err != nil {
			return nil, err
		}
	}

	if err := st.Commit(); err != nil {
		return nil, err
	}

	return &soloEnv{
		state:    st,
		pool:     p,
		sink:     sink,
		assetA:   assetA,
		assetB:   assetB,
		nfts:     nfts,
		rewarder: rewarder,
	}, nil
}

// postReward mints the demo amounts to the rewarder and posts them to the
// pool, holding the env lock for the whole post-and-commit sequence.
func (e *soloEnv) postReward(amountA, amountB *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.assetA.Mint(e.rewarder, amountA)
	e.assetB.Mint(e.rewarder, amountB)
	if err := e.pool.PostReward(e.rewarder, e.nfts.Address(), amountA, amountB); err != nil {
		return err
	}
	return e.state.Commit()
}

// rewardLoop posts a fixed demo reward on every tick until ctx is done.
func (e *soloEnv) rewardLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	amountA := big.NewInt(1000)
	amountB := big.NewInt(300)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.postReward(amountA, amountB); err != nil {
				logger.Warn("demo reward posting failed", "err", err)
				continue
			}
			logger.Info("posted demo reward", "amountA", amountA, "amountB", amountB)
		}
	}
}
