package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewValidation("patient is required"), http.StatusBadRequest},
		{NewConflict("slot taken"), http.StatusConflict},
		{NewCollaborator("fetch appointments", sql.ErrConnDone), http.StatusBadGateway},
		{NewNotFound("appointment", nil), http.StatusNotFound},
		{Unauthorized(nil), http.StatusUnauthorized},
		{NewInternal(nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.StatusCode(), tc.err.Error())
	}
}

func TestKindHelpersFollowWrapping(t *testing.T) {
	wrapped := fmt.Errorf("book: %w", NewConflict("slot taken"))

	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsCollaborator(wrapped))
	assert.False(t, IsValidation(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(0), CodeOf(nil))
}

func TestCollaboratorMessageKeepsCause(t *testing.T) {
	err := NewCollaborator("create appointment", sql.ErrConnDone)

	assert.Equal(t, "create appointment failed: sql: connection is already closed", err.Error())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
