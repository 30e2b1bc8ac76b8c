package services

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/SuperB747/emotion-notepad-sub000/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHashAndComparePasswords(t *testing.T) {
	service := NewAuthService("test-secret", 24)

	hash, err := service.HashPassword("hunter2")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, service.ComparePasswords(hash, "hunter2"))
	assert.Error(t, service.ComparePasswords(hash, "wrong"))
}

func TestLogin_Success(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	service := NewAuthService("test-secret", 24)

	userID := uuid.New()
	hash, err := service.HashPassword("hunter2")
	assert.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "password_hash"}).
			AddRow(userID.String(), "user@example.com", "User", hash))

	tokenString, err := service.Login(db, "user@example.com", "hunter2")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := service.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	service := NewAuthService("test-secret", 24)

	hash, err := service.HashPassword("hunter2")
	assert.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}).
			AddRow(uuid.New().String(), "user@example.com", hash))

	_, err = service.Login(db, "user@example.com", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, mock, close := testutils.SetupMockDB()
	defer close()

	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	service := NewAuthService("test-secret", 24)
	_, err := service.Login(db, "nobody@example.com", "hunter2")
	assert.Equal(t, ErrInvalidCredentials, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", 24)
	verifier := NewAuthService("secret-b", 24)

	db, mock, close := testutils.SetupMockDB()
	defer close()

	hash, _ := issuer.HashPassword("hunter2")
	mock.ExpectQuery(`SELECT (.+) FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}).
			AddRow(uuid.New().String(), "user@example.com", hash))

	tokenString, err := issuer.Login(db, "user@example.com", "hunter2")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(tokenString)
	assert.Error(t, err)
}
