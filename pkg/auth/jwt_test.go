package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewJWTService("s3cret")

	token, err := svc.GenerateAccessToken("desk-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "desk-1", claims.Subject)

	_, err = NewJWTService("other").ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.GenerateAccessToken("", time.Hour)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredAndUnbounded(t *testing.T) {
	svc := NewJWTService("s3cret")

	expired, err := svc.GenerateAccessToken("desk-1", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.Error(t, err)

	forever, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "desk-1"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forever)
	assert.Error(t, err)
}
