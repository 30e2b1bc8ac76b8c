package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	tokenString, err := GenerateToken(userID, "user@example.com", "User", secret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := ValidateToken(tokenString, secret)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "User", claims.DisplayName)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(uuid.New(), "user@example.com", "", []byte("secret-a"), time.Hour)
	assert.NoError(t, err)

	_, err = ValidateToken(tokenString, []byte("secret-b"))
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	secret := []byte("test-secret")
	tokenString, err := GenerateToken(uuid.New(), "user@example.com", "", secret, -time.Minute)
	assert.NoError(t, err)

	_, err = ValidateToken(tokenString, secret)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", []byte("test-secret"))
	assert.Error(t, err)
}
