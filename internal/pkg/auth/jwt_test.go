package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "placement.test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWT()

	pair, err := svc.GenerateTokenPair(TokenSubject{UserID: 7, Email: "a@college.edu", Role: "student"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWT()
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.GenerateTokenPair(TokenSubject{UserID: 1, Email: "x@y.z", Role: "admin"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	pair, err := newTestJWT().GenerateTokenPair(TokenSubject{UserID: 1, Email: "x@y.z", Role: "admin"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "placement.test"})
	_, err = other.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	tok, err = ExtractBearerToken(`"a.b.c"`)
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", tok)

	_, err = ExtractBearerToken("Bearer nope")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPasswordPolicyAndHash(t *testing.T) {
	BcryptCost = 4
	assert.ErrorIs(t, ValidatePasswordPolicy("short1"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePasswordPolicy("lettersonly"), ErrPasswordWeak)
	assert.NoError(t, ValidatePasswordPolicy("letters123"))

	hash, err := HashPassword("letters123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "letters123"))
	assert.False(t, CheckPassword(hash, "letters124"))
}
