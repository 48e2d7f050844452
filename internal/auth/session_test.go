// internal/auth/session_test.go
package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	Init()
	userID := uuid.New().String()

	token, err := CreateJWT(userID)
	require.NoError(t, err)

	sub, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sub)

	_, err = AuthenticateJWT(token + "tampered")
	assert.Error(t, err)
}

func TestUserIDFromRequest(t *testing.T) {
	Init()
	userID := uuid.New()
	token, err := CreateJWT(userID.String())
	require.NoError(t, err)

	// Cookie carries the token.
	r := httptest.NewRequest("GET", "/rooms/ws/"+uuid.New().String(), nil)
	r.Header.Set("Cookie", "auth_token="+token+"; other=1")
	got, err := UserIDFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	// Query parameter fallback for browser WebSocket upgrades.
	r = httptest.NewRequest("GET", "/lobbies/ws?token="+token, nil)
	got, err = UserIDFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	// No token at all: anonymous, not an error.
	r = httptest.NewRequest("GET", "/lobbies/ws", nil)
	got, err = UserIDFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)

	// A present but invalid token is an error.
	r = httptest.NewRequest("GET", "/lobbies/ws?token=garbage", nil)
	_, err = UserIDFromRequest(r)
	assert.Error(t, err)
}

func TestUserIDFromRequestRejectsNonUUIDSubject(t *testing.T) {
	Init()
	token, err := CreateJWT("not-a-uuid")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/lobbies/ws?token="+token, nil)
	_, err = UserIDFromRequest(r)
	assert.Error(t, err)
}
