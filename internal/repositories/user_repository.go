package repositories

import (
	"time"

	"whisperbox/internal/models"
)

// UserRepository defines the interface for user and message data access.
// Each method is a single atomic operation against one user record.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// Update persists all fields of an existing user record.
	Update(user *models.User) error
	// RefreshVerificationCode stores a fresh code for the user in a single
	// conditional write: it succeeds only if no code was issued within the
	// cooldown before sentAt, and fails with ErrResendCooldown otherwise.
	// The store arbitrates, so concurrent resends cannot both pass the
	// cooldown on a stale read.
	RefreshVerificationCode(userID, code string, expiry, sentAt time.Time, cooldown time.Duration) error

	AppendMessage(userID string, message *models.Message) error
	// ListMessages returns the user's messages newest-first.
	ListMessages(userID string) ([]models.Message, error)
	// RemoveMessage deletes a message only if it belongs to the given user.
	RemoveMessage(userID, messageID string) error
}
