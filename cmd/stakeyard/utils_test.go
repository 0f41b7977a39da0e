// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

// soloContext parses args against the solo command's own flag set, the way
// cli dispatches a subcommand. The flags are command-local, not global.
func soloContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("solo", flag.ContinueOnError)
	for _, f := range []cli.Flag{
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
	} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfigCommandLocalFlags(t *testing.T) {
	ctx := soloContext(t,
		"--data-dir", "/tmp/stakeyard-test",
		"--api-addr", "127.0.0.1:9669",
		"--api-cors", "http://example.com",
		"--metrics-addr", "127.0.0.1:2113",
	)

	cfg, err := loadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/stakeyard-test", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:9669", cfg.APIAddr)
	assert.Equal(t, "http://example.com", cfg.AllowedOrigins)
	assert.Equal(t, "127.0.0.1:2113", cfg.MetricsAddr)

	// verbosity and json-logs are read the same way
	ctx = soloContext(t, "--verbosity", "4", "--json-logs")
	assert.Equal(t, 4, ctx.Int(verbosityFlag.Name))
	assert.True(t, ctx.Bool(jsonLogsFlag.Name))
}

func TestLoadConfigFileWithFlagOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataDir: /from/file\napiAddr: 'file:1234'\n"), 0o600))

	ctx := soloContext(t, "--config", path, "--api-addr", "127.0.0.1:9669")

	cfg, err := loadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:9669", cfg.APIAddr)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(soloContext(t))
	require.NoError(t, err)
	assert.Equal(t, ".stakeyard", cfg.DataDir)
	assert.Equal(t, "localhost:8669", cfg.APIAddr)
}
