package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/logging"
)

const (
	maxBodyBytes = 1 << 20

	defaultPageSize = 20
	maxPageSize     = 100

	msgBadJSON = "Dữ liệu gửi lên không hợp lệ"
	msgBadID   = "Mã không hợp lệ"
)

// errorWriter logs unexpected failures before handing them to respond.Fail.
type errorWriter struct {
	logger logging.Logger
	detail bool
}

func (e errorWriter) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.ErrInternal {
		e.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respond.Fail(w, err, e.detail)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(msgBadJSON)
		}
		return apperr.Wrap(apperr.ErrValidation, msgBadJSON, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(msgBadID)
	}
	return id, nil
}

// pageParams reads limit and offset query parameters, falling back to the
// first page on anything malformed.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
