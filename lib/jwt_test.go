package lib

import (
	"errors"
	"ferreteria_server/structs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testClaims(exp time.Time) *structs.AuthClaims {
	return &structs.AuthClaims{
		Sub:   uuid.New(),
		Email: "clerk@ferreteria.test",
		Role:  "clerk",
		Iat:   time.Now().Truncate(time.Second),
		Exp:   exp.Truncate(time.Second),
		Jti:   uuid.New(),
		Sid:   uuid.New(),
	}
}

func TestSignAndParseToken(t *testing.T) {
	claims := testClaims(time.Now().Add(time.Hour))

	token, err := SignToken(claims, testSecret)
	require.NoError(t, err)

	got, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, claims.Sub, got.Sub)
	assert.Equal(t, claims.Sid, got.Sid)
	assert.Equal(t, claims.Jti, got.Jti)
	assert.Equal(t, claims.Email, got.Email)
	assert.Equal(t, claims.Role, got.Role)
	assert.True(t, claims.Exp.Equal(got.Exp))
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignToken(testClaims(time.Now().Add(time.Hour)), testSecret)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := SignToken(testClaims(time.Now().Add(-time.Minute)), testSecret)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractClaimsFromCookie(t *testing.T) {
	claims := testClaims(time.Now().Add(time.Hour))
	token, err := SignToken(claims, testSecret)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ExtractClaims(r, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: token})
	got, err := ExtractClaims(r, testSecret)
	require.NoError(t, err)
	assert.Equal(t, claims.Sid, got.Sid)
}

func TestMapDBError(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
	assert.ErrorIs(t, MapDBError(&pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, MapDBError(&pgconn.PgError{Code: "P0002"}), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, MapDBError(other))

	code, ok := SQLState(&pgconn.PgError{Code: "40001"})
	assert.True(t, ok)
	assert.Equal(t, "40001", code)
}
