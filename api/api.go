// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the pool's ledger as a read-only HTTP interface.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakeyard/stakeyard/api/collections"
	"github.com/stakeyard/stakeyard/api/rewards"
	"github.com/stakeyard/stakeyard/api/stakers"
	"github.com/stakeyard/stakeyard/log"
	"github.com/stakeyard/stakeyard/pool"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableMetrics   bool
	EnableReqLogger bool
}

// New returns the api router as a plain handler func.
func New(p *pool.Pool, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	collections.New(p).Mount(router, "/collections")
	stakers.New(p).Mount(router, "/stakers")
	rewards.New(p).Mount(router, "/rewards")

	if opts.EnableMetrics {
		router.Use(metricsHandler)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = requestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP
}
