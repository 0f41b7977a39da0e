// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/stakeyard/stakeyard/metrics"
)

var metricHTTPReqCounter = metrics.LazyLoadCounterVec("api_request_count", []string{"path", "code", "method"})

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// metricsHandler records a counter sample per served request.
func metricsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{w, http.StatusOK}
		h.ServeHTTP(srw, r)

		path := strings.ReplaceAll(strings.TrimLeft(r.URL.Path, "/"), "/", "_")
		metricHTTPReqCounter().AddWithLabel(1, map[string]string{
			"path":   path,
			"code":   strconv.Itoa(srw.statusCode),
			"method": r.Method,
		})
	})
}
