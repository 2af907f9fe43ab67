package services_test

import (
	"fmt"
	"testing"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := verifiedUser()
	user.Password = string(hashedPassword)

	// Successful login by username
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	token, err := authService.Login("alice", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate the token structure
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	mockRepo.AssertExpectations(t)

	// Login by email falls back after the username lookup misses
	mockRepo.On("GetByUsername", "a@x.com").Return(nil, apperrors.ErrUserNotFound()).Once()
	mockRepo.On("GetByEmail", "a@x.com").Return(user, nil).Once()
	token, err = authService.Login("a@x.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	mockRepo.AssertExpectations(t)

	// Wrong password yields the generic credentials error
	mockRepo.On("GetByUsername", "alice").Return(user, nil).Once()
	_, err = authService.Login("alice", "wrongpassword")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidLogin))
	mockRepo.AssertExpectations(t)

	// Unknown user yields the same generic error, no enumeration
	mockRepo.On("GetByUsername", "nobody").Return(nil, apperrors.ErrUserNotFound()).Once()
	mockRepo.On("GetByEmail", "nobody").Return(nil, apperrors.ErrUserNotFound()).Once()
	_, err = authService.Login("nobody", "password123")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidLogin))
	mockRepo.AssertExpectations(t)

	// An unverified account cannot sign in even with the right password
	unverified := pendingUser("482913", time.Now().Add(time.Hour))
	unverified.Password = string(hashedPassword)
	mockRepo.On("GetByUsername", "alice").Return(unverified, nil).Once()
	_, err = authService.Login("alice", "password123")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotVerified))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	// Test invalid token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "alice",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
