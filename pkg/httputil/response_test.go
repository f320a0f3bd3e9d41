package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRespondWithErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{errors.NewConflict("10:00 is taken"), http.StatusConflict, "10:00 is taken"},
		{errors.NewValidation("date is required"), http.StatusBadRequest, "date is required"},
		{errors.NewNotFound("appointment", nil), http.StatusNotFound, "appointment not found"},
		{errors.NewCollaborator("fetch appointments", assert.AnError), http.StatusBadGateway, "fetch appointments failed"},
		{errors.NewInternal(assert.AnError), http.StatusInternalServerError, "internal server error"},
		{assert.AnError, http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		RespondWithError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		resp := decode(t, w)
		assert.Equal(t, StatusError, resp.Status)
		assert.Equal(t, tc.message, resp.Message)
		assert.Len(t, c.Errors, 1)
	}
}

func TestBindJSONReportsFields(t *testing.T) {
	type body struct {
		Name string `json:"name" binding:"required"`
		Age  int    `json:"age" binding:"min=0,max=150"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"age": 200}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var b body
	assert.False(t, BindJSON(c, &b))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp.Message, "is required")
	assert.Contains(t, resp.Message, "must be at most 150")
}

func TestBindErrorOnMalformedJSON(t *testing.T) {
	err := BindError(&json.SyntaxError{})
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, "invalid request body", err.Message)
}
