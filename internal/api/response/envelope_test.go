package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamboard/internal/api/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()

	response.Success(rec, http.StatusCreated, map[string]string{"id": "abc"}, "req-1")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["error"])
	assert.Equal(t, "abc", body["data"].(map[string]any)["id"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "req-1", meta["requestId"])
	assert.NotEmpty(t, meta["timestamp"])
}

func TestSuccessList(t *testing.T) {
	rec := httptest.NewRecorder()

	response.SuccessList(rec, http.StatusOK, []int{1, 2}, 12, 2, 10, "req-2")

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(12), meta["total"])
	assert.Equal(t, float64(2), meta["page"])
	assert.Equal(t, float64(10), meta["limit"])
}

func TestErr(t *testing.T) {
	rec := httptest.NewRecorder()

	response.ErrWithDetails(rec, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
		[]map[string]string{{"field": "name"}}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Nil(t, body["data"])
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Len(t, errObj["details"], 1)
	assert.NotEmpty(t, body["meta"].(map[string]any)["requestId"])
}

func TestInternal(t *testing.T) {
	rec := httptest.NewRecorder()

	response.Internal(rec, errors.New("boom"), "Failed to do thing", "req-3")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "INTERNAL_ERROR", errObj["code"])
	assert.Equal(t, "Failed to do thing", errObj["message"])
	assert.NotContains(t, rec.Body.String(), "boom")
}
