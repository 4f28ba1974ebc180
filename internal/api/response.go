// Cohortlens - OMOP Cohort Analysis API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/models"
	"github.com/tomtom215/cohortlens/internal/validation"
)

// maxRequestBodyBytes caps JSON request bodies.
const maxRequestBodyBytes = 1 << 20

// respondJSON writes data as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes {"detail": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Detail: message})
}

// errInvalidBody is returned by decodeJSON for unreadable or non-object bodies.
var errInvalidBody = errors.New("invalid request body")

// decodeJSON reads one JSON object from the request body into dst.
// Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w: body exceeds %d bytes", errInvalidBody, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: body is empty", errInvalidBody)
		default:
			return fmt.Errorf("%w: %s", errInvalidBody, err.Error())
		}
	}
	return nil
}

// bindRequest decodes and validates a request body, writing a 400 on failure.
// It reports whether the handler should continue.
func bindRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected request body")
		respondError(w, http.StatusBadRequest, capitalize(err.Error()))
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		logging.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Str("error", verr.Error()).Msg("Request failed validation")
		respondError(w, http.StatusBadRequest, verr.Detail())
		return false
	}
	return true
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
