package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cure-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cure-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(7, "tutor@example.com", RoleInstructor, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "tutor@example.com", claims.Email)
	assert.Equal(t, RoleInstructor, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.c", RoleStudent, testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    1,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refreshToken, err := GenerateTokens(3, "s@t.u", RoleStudent, testSecret, testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refreshToken, testSecret, testSecret)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, 3, claims.UserID)
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	accessToken, err := GenerateAccessToken(3, "s@t.u", RoleStudent, testSecret)
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(accessToken, testSecret, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestEmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "a@b.c", RoleStudent, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}
