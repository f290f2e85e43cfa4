package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestSignSession_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).UTC()
	token, err := SignSession(42, "admin", exp, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := SessionClaimsFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestSessionClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	valid, err := SignSession(1, "customer", time.Now().Add(time.Hour), testSecret)
	require.NoError(t, err)
	expired, err := SignSession(1, "customer", time.Now().Add(-time.Minute), testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "garbage", token: "not-a-jwt", secret: testSecret},
		{name: "wrong secret", token: valid, secret: []byte("other")},
		{name: "expired", token: expired, secret: testSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := SessionClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}

	_, err = SessionClaimsFromToken(expired, testSecret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestSessionClaims_UserID_BadSubject(t *testing.T) {
	c := &SessionClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteCookie_Expires(t *testing.T) {
	ck := DeleteCookie(SessionCookie, "/", true)
	assert.Equal(t, -1, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Empty(t, ck.Value)
}
