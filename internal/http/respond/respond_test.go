package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/elearn-be/internal/apperr"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "ok", map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Message)
}

func TestFail(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", apperr.Validation("Email không hợp lệ"), http.StatusBadRequest, "Email không hợp lệ"},
		{"unauthenticated", apperr.Unauthenticated(""), http.StatusUnauthorized, "Vui lòng đăng nhập"},
		{"forbidden", apperr.Forbidden(""), http.StatusForbidden, "Bạn không có quyền truy cập"},
		{"not found", apperr.NotFound("Không tìm thấy tài liệu"), http.StatusNotFound, "Không tìm thấy tài liệu"},
		{"conflict", apperr.Conflict(""), http.StatusConflict, "Dữ liệu đã tồn tại"},
		{"rate limited", apperr.New(apperr.ErrRateLimited, ""), http.StatusTooManyRequests, "Bạn đã thử quá nhiều lần, vui lòng thử lại sau"},
		{"unclassified", errors.New("pg: connection refused"), http.StatusInternalServerError, "Lỗi máy chủ, vui lòng thử lại sau"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Fail(rec, tt.err, false)

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.msg, env.Message)
			assert.Empty(t, env.Error)
		})
	}
}

func TestFail_DetailOnlyForInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, apperr.Internal(errors.New("pg: connection refused")), true)
	assert.Contains(t, decode(t, rec).Error, "connection refused")

	rec = httptest.NewRecorder()
	Fail(rec, apperr.Forbidden(""), true)
	assert.Empty(t, decode(t, rec).Error)
}
