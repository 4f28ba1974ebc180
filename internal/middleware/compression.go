// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package middleware

import (
	"compress/gzip"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// gzipWrap is built once; the options are constant so construction cannot fail.
var gzipWrap = func() func(http.Handler) http.HandlerFunc {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(gzhttp.DefaultMinSize),
		gzhttp.CompressionLevel(gzip.DefaultCompression),
	)
	if err != nil {
		panic(err)
	}
	return wrap
}()

// Compression gzips response bodies for clients that accept it. Bodies
// under 1KiB are sent as-is, and HEAD requests bypass the encoder.
func Compression(next http.Handler) http.Handler {
	compressed := gzipWrap(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Add("Vary", "Accept-Encoding")
			next.ServeHTTP(w, r)
			return
		}
		compressed(w, r)
	})
}
