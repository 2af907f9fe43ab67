package services

import (
	"fmt"
	"log"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"
	"whisperbox/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles sign-in and token validation for inbox owners.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Login authenticates a user by username or email and returns a JWT token.
// Only verified accounts may sign in.
func (s *AuthService) Login(identifier, password string) (string, error) {
	user, err := s.lookup(identifier)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", apperrors.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials()
	}

	if !user.IsVerified {
		return "", apperrors.ErrNotVerified()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "token_signing_failed", "failed to generate token", err)
	}

	return tokenString, nil
}

func (s *AuthService) lookup(identifier string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(identifier)
	if err == nil {
		return user, nil
	}
	if !apperrors.HasCode(err, apperrors.CodeUserNotFound) {
		return nil, err
	}
	return s.userRepo.GetByEmail(identifier)
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
