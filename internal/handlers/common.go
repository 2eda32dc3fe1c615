package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/middleware"
	"fuel-backend/internal/timeutil"
	"fuel-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unclassified errors are
// logged and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	msg := err.Error()
	switch apperr.KindOf(err) {
	case apperr.KindPartialWrite:
		log.Error().Err(err).Str("component", "http").
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("partial write")
	case apperr.KindInternal:
		log.Error().Err(err).Str("component", "http").
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		msg = "Internal server error"
	}
	utils.Error(w, status, msg)
}

// decode reads a JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// windowArgs reads from, to, month, year and range from the query.
func windowArgs(r *http.Request) timeutil.WindowArgs {
	q := r.URL.Query()
	return timeutil.WindowArgs{
		From:  q.Get("from"),
		To:    q.Get("to"),
		Month: q.Get("month"),
		Year:  q.Get("year"),
		Range: q.Get("range"),
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key))); err == nil {
		return n
	}
	return def
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return b
}
