package services

import (
	"fmt"
	"time"
	"unicode/utf8"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"
	"whisperbox/internal/repositories"
)

const (
	messageMinLength = 10
	messageMaxLength = 500
)

// MessageService handles business logic for anonymous message delivery and
// the owner's inbox.
type MessageService struct {
	userRepo repositories.UserRepository
}

// NewMessageService creates a new MessageService.
func NewMessageService(userRepo repositories.UserRepository) *MessageService {
	return &MessageService{
		userRepo: userRepo,
	}
}

// CheckUsernameAvailable reports whether a username can still be registered.
// Side-effect free; a stale pending registration past its code expiry does not
// block the name.
func (s *MessageService) CheckUsernameAvailable(username string) (bool, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUserNotFound) {
			return true, nil
		}
		return false, err
	}
	return reclaimable(user, time.Now()), nil
}

// AcceptanceStatus returns the user's current message-acceptance flag.
func (s *MessageService) AcceptanceStatus(userID string) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false, err
	}
	return user.IsAcceptingMessages, nil
}

// ToggleAcceptance sets the acceptance flag to the desired value and returns
// the new state. Idempotent: setting the same value twice is a no-op.
func (s *MessageService) ToggleAcceptance(userID string, desired bool) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false, err
	}
	if user.IsAcceptingMessages == desired {
		return desired, nil
	}
	user.IsAcceptingMessages = desired
	if err := s.userRepo.Update(user); err != nil {
		return false, err
	}
	return desired, nil
}

// Submit delivers an anonymous message to the named user, subject to the
// acceptance flag and the content bounds. The sender is never recorded.
func (s *MessageService) Submit(username, content string) (*models.Message, error) {
	if length := utf8.RuneCountInString(content); length < messageMinLength || length > messageMaxLength {
		return nil, apperrors.ErrInvalidContent(
			fmt.Sprintf("message must be between %d and %d characters", messageMinLength, messageMaxLength))
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	// Unverified registrations have no public profile yet.
	if !user.IsVerified {
		return nil, apperrors.ErrUserNotFound()
	}
	if !user.IsAcceptingMessages {
		return nil, apperrors.ErrNotAccepting()
	}

	message := &models.Message{
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.AppendMessage(user.ID, message); err != nil {
		return nil, err
	}
	return message, nil
}

// List returns the owner's messages, newest-first. An empty inbox is an empty
// slice, not an error.
func (s *MessageService) List(userID string) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	return s.userRepo.ListMessages(userID)
}

// Delete permanently removes one of the owner's messages.
func (s *MessageService) Delete(userID, messageID string) error {
	return s.userRepo.RemoveMessage(userID, messageID)
}
