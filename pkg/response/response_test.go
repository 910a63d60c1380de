package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestStatusEnvelope(t *testing.T) {
	c, w := testContext()
	OK(c, http.StatusCreated, "created", map[string]string{"k": "v"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]any{"k": "v"}, body["data"])

	c, w = testContext()
	Fail(c, http.StatusBadRequest, "nope")
	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"status": "error", "message": "nope"}, body)
}

func TestAbortStopsChain(t *testing.T) {
	c, w := testContext()
	Abort(c, http.StatusUnauthorized, "no")
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIResponse(t *testing.T) {
	c, w := testContext()
	c.Set("request_id", "rid")
	Success(c, 0, []int{1}, "ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "rid", body["request_id"])

	c, w = testContext()
	Error[any](c, 0, "bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "bad", body["message"])
}
