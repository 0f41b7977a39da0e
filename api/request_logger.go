// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/stakeyard/stakeyard/log"
)

// requestLoggerHandler logs every served request. The interface is read-only,
// so bodies are not captured.
func requestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		logger.Info("api request",
			"uri", r.URL.String(),
			"method", r.Method,
			"elapsed", time.Since(start),
		)
	})
}
