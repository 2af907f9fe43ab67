package repositories

import (
	"errors"
	"fmt"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// It relies on the store's unique indexes and single-row atomicity to
// adjudicate concurrent registrations; the database must be opened with
// TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Wrap(apperrors.KindConflict, "duplicate_key", "username or email already exists", err)
		}
		return apperrors.ErrStoreUnavailable(fmt.Errorf("create user: %w", err))
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrStoreUnavailable(fmt.Errorf("get user by username %s: %w", username, err))
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrStoreUnavailable(fmt.Errorf("get user by email: %w", err))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrStoreUnavailable(fmt.Errorf("get user by ID %s: %w", id, err))
	}
	return &user, nil
}

// Update persists all fields of an existing user record.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Save(user) // Save updates all fields, including zero values
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.Wrap(apperrors.KindConflict, "duplicate_key", "username or email already exists", res.Error)
		}
		return apperrors.ErrStoreUnavailable(fmt.Errorf("update user %s: %w", user.ID, res.Error))
	}
	if res.RowsAffected == 0 {
		// Save does not return ErrRecordNotFound for a no-op update,
		// so RowsAffected is the only signal the record is gone.
		return apperrors.ErrUserNotFound()
	}
	return nil
}

// RefreshVerificationCode issues a new code through a single conditional
// UPDATE. The WHERE clause carries the cooldown check, so two concurrent
// resends can never both pass it on a stale read: the database serializes the
// row update and the loser matches zero rows.
func (r *GORMUserRepository) RefreshVerificationCode(userID, code string, expiry, sentAt time.Time, cooldown time.Duration) error {
	cutoff := sentAt.Add(-cooldown)
	res := r.db.Model(&models.User{}).
		Where("id = ? AND (last_code_sent_at IS NULL OR last_code_sent_at <= ?)", userID, cutoff).
		Updates(map[string]interface{}{
			"verify_code":        code,
			"verify_code_expiry": expiry,
			"last_code_sent_at":  sentAt,
		})
	if res.Error != nil {
		return apperrors.ErrStoreUnavailable(fmt.Errorf("refresh code for user %s: %w", userID, res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrResendCooldown()
	}
	return nil
}

// AppendMessage stores a new message owned by the given user.
func (r *GORMUserRepository) AppendMessage(userID string, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.UserID = userID
	if err := r.db.Create(message).Error; err != nil {
		return apperrors.ErrStoreUnavailable(fmt.Errorf("append message for user %s: %w", userID, err))
	}
	return nil
}

// ListMessages returns the user's messages newest-first.
func (r *GORMUserRepository) ListMessages(userID string) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, apperrors.ErrStoreUnavailable(fmt.Errorf("list messages for user %s: %w", userID, err))
	}
	return messages, nil
}

// RemoveMessage deletes a message, scoped to the owning user so one user can
// never delete another user's message by guessing its ID.
func (r *GORMUserRepository) RemoveMessage(userID, messageID string) error {
	res := r.db.Delete(&models.Message{}, "id = ? AND user_id = ?", messageID, userID)
	if res.Error != nil {
		return apperrors.ErrStoreUnavailable(fmt.Errorf("remove message %s: %w", messageID, res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMessageNotFound()
	}
	return nil
}
