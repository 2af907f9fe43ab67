package services

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"
	"whisperbox/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	// How long a verification code stays valid after issuance.
	codeTTL = 1 * time.Hour
	// Minimum interval between code deliveries for the same user.
	resendCooldown = 60 * time.Second

	emailQueueRoutingKey = "email_queue"
)

// MessagePublisher publishes raw payloads to the message broker.
// Implemented by pkg/rabbitmq.Client.
type MessagePublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// VerificationEmailTask is the payload placed on the email queue for each
// issued code. The consumer renders and delivers the actual email.
type VerificationEmailTask struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	OTP      string `json:"otp"`
}

// VerificationService owns the registration and code-verification lifecycle:
// Unregistered -> PendingVerification -> Verified, with a resend self-loop on
// PendingVerification.
type VerificationService struct {
	userRepo  repositories.UserRepository
	publisher MessagePublisher
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(userRepo repositories.UserRepository, publisher MessagePublisher) *VerificationService {
	return &VerificationService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// Register creates a pending registration with a fresh verification code and
// queues the code for email delivery.
//
// An existing record blocks the username or email unless it is both unverified
// and past its code expiry, in which case it is overwritten in place. Two
// distinct stale records holding the username and the email separately are not
// merged; that registration is rejected until one of them is reclaimed.
func (s *VerificationService) Register(username, email, password string) (*models.User, error) {
	now := time.Now()

	byName, err := s.userRepo.GetByUsername(username)
	if err != nil && !apperrors.HasCode(err, apperrors.CodeUserNotFound) {
		return nil, err
	}
	if byName != nil && !reclaimable(byName, now) {
		return nil, apperrors.ErrUsernameTaken(username)
	}

	byEmail, err := s.userRepo.GetByEmail(email)
	if err != nil && !apperrors.HasCode(err, apperrors.CodeUserNotFound) {
		return nil, err
	}
	if byEmail != nil && !reclaimable(byEmail, now) {
		return nil, apperrors.ErrEmailTaken(email)
	}
	if byName != nil && byEmail != nil && byName.ID != byEmail.ID {
		return nil, apperrors.ErrEmailTaken(email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "hash_failed", "failed to hash password", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "code_generation_failed", "failed to generate verification code", err)
	}
	expiry := now.Add(codeTTL)

	// Reuse the reclaimed row if one exists so the unique indexes keep
	// adjudicating any concurrent registration for the same identity.
	user := byName
	if user == nil {
		user = byEmail
	}
	creating := user == nil
	if creating {
		user = &models.User{IsAcceptingMessages: true}
	}
	user.Username = username
	user.Email = email
	user.Password = string(hashedPassword)
	user.VerifyCode = code
	user.VerifyCodeExpiry = &expiry
	user.LastCodeSentAt = &now
	user.IsVerified = false

	if creating {
		err = s.userRepo.Create(user)
	} else {
		err = s.userRepo.Update(user)
	}
	if err != nil {
		return nil, err
	}

	s.queueVerificationEmail(user)
	return user, nil
}

// Verify checks the submitted code and flips the user to verified.
// Re-verifying an already verified user fails rather than silently succeeding.
func (s *VerificationService) Verify(username, code string) error {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.ErrAlreadyVerified()
	}
	if user.CodeExpired(time.Now()) {
		return apperrors.ErrCodeExpired()
	}
	if user.VerifyCode != code {
		return apperrors.ErrCodeMismatch()
	}

	user.IsVerified = true
	user.VerifyCode = ""
	user.VerifyCodeExpiry = nil
	user.LastCodeSentAt = nil
	return s.userRepo.Update(user)
}

// Resend issues a fresh code for a pending registration, subject to the
// cooldown, and queues it for delivery.
//
// The cooldown is enforced by the store's conditional update, not by comparing
// against the timestamp read above: concurrent resends that both read a stale
// LastCodeSentAt still race to a single row update, and only the winner's code
// is emailed.
func (s *VerificationService) Resend(username string) error {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.ErrAlreadyVerified()
	}

	code, err := generateVerificationCode()
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "code_generation_failed", "failed to generate verification code", err)
	}
	now := time.Now()
	expiry := now.Add(codeTTL)

	if err := s.userRepo.RefreshVerificationCode(user.ID, code, expiry, now, resendCooldown); err != nil {
		return err
	}

	user.VerifyCode = code
	user.VerifyCodeExpiry = &expiry
	user.LastCodeSentAt = &now
	s.queueVerificationEmail(user)
	return nil
}

// queueVerificationEmail hands the code to the email queue. Failure to publish
// is logged but never fails the calling operation; the user can always ask for
// a resend once the cooldown passes.
func (s *VerificationService) queueVerificationEmail(user *models.User) {
	if s.publisher == nil {
		log.Println("Message publisher is not initialized. Skipping verification email.")
		return
	}

	task := VerificationEmailTask{
		Username: user.Username,
		Email:    user.Email,
		OTP:      user.VerifyCode,
	}
	body, err := json.Marshal(task)
	if err != nil {
		log.Printf("Failed to marshal verification email task: %v", err)
		return
	}
	if err := s.publisher.Publish("", emailQueueRoutingKey, body); err != nil {
		log.Printf("Warning: Failed to queue verification email for user %s: %v", user.Username, err)
	}
}

// reclaimable reports whether an existing record may be overwritten by a new
// registration: never once verified, and only after its code expired.
func reclaimable(user *models.User, now time.Time) bool {
	return !user.IsVerified && user.CodeExpired(now)
}

// generateVerificationCode returns a cryptographically random six-digit code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
