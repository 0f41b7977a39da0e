// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeyard/stakeyard/api"
	"github.com/stakeyard/stakeyard/auth"
	"github.com/stakeyard/stakeyard/config"
	"github.com/stakeyard/stakeyard/log"
	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/metrics"
	"github.com/stakeyard/stakeyard/pool"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
	"github.com/stakeyard/stakeyard/token"
)

var (
	version   string
	gitCommit string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	if version == "" {
		return "dev"
	}
	return fmt.Sprintf("%s-%s", version, gitCommit)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakeyard",
		Usage:     "Staking pool ledger node",
		Copyright: "2025 The Stakeyard developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "run a self-contained pool with in-process asset ledgers, for test & dev",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					apiAddrFlag,
					apiCorsFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					persistFlag,
					rewardIntervalFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// unboundResolver serves a node with no collaborators attached. Views never
// resolve, so a read-only node works fine with it.
type unboundResolver struct{}

func (unboundResolver) Fungible(addr stakeyard.Address) (token.Fungible, error) {
	return nil, errors.Errorf("no fungible token bound at %v", addr)
}

func (unboundResolver) Collection(addr stakeyard.Address) (token.Collection, error) {
	return nil, errors.Errorf("no collection bound at %v", addr)
}

func defaultAction(ctx *cli.Context) error {
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

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		fatal("create data dir:", err)
	}
	db, err := lvldb.New(filepath.Join(cfg.DataDir, "ledger.db"), lvldb.Options{})
	if err != nil {
		fatal("open ledger database:", err)
	}
	defer func() { logger.Info("closing ledger database..."); db.Close() }()

	p, err := buildPool(cfg, state.New(db), unboundResolver{})
	if err != nil {
		fatal(err)
	}

	apiSrv, apiURL, err := startAPIServer(cfg.APIAddr, api.New(p, api.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger: true,
	}))
	if err != nil {
		fatal("start API server:", err)
	}
	defer func() { logger.Info("stopping API server..."); shutdownServer(apiSrv) }()

	logger.Info("pool node started",
		"pool", p.Address(),
		"api", apiURL,
		"dataDir", cfg.DataDir,
	)

	<-handleExitSignal().Done()
	return nil
}

// buildPool assembles the pool over the given state and applies the
// configured role members and reward assets.
func buildPool(cfg *config.Config, st *state.State, resolver token.Resolver) (*pool.Pool, error) {
	poolAddr, err := config.AddressOf(cfg.PoolAddr)
	if err != nil {
		return nil, errors.WithMessage(err, "poolAddr")
	}
	if poolAddr.IsZero() {
		poolAddr = stakeyard.BytesToAddress([]byte("stakeyard-pool"))
	}

	p := pool.New(poolAddr, st, resolver, pool.Options{})

	for _, member := range cfg.Admins {
		addr := stakeyard.MustParseAddress(member)
		if err := p.Gate().Grant(auth.RoleAdmin, addr); err != nil {
			return nil, err
		}
	}
	for _, member := range cfg.Rewarders {
		addr := stakeyard.MustParseAddress(member)
		if err := p.Gate().Grant(auth.RoleRewarder, addr); err != nil {
			return nil, err
		}
	}

	if len(cfg.Admins) > 0 && (cfg.AssetA != "" || cfg.AssetB != "") {
		admin := stakeyard.MustParseAddress(cfg.Admins[0])
		assetA, err := config.AddressOf(cfg.AssetA)
		if err != nil {
			return nil, errors.WithMessage(err, "assetA")
		}
		assetB, err := config.AddressOf(cfg.AssetB)
		if err != nil {
			return nil, errors.WithMessage(err, "assetB")
		}
		if err := p.SetRewardAssets(admin, assetA, assetB); err != nil {
			return nil, err
		}
	}

	if err := st.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}
