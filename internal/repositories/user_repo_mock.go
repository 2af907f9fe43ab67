package repositories

import (
	"sort"
	"sync"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
// Useful for local development and handler tests where a real database
// would add nothing.
type MockUserRepository struct {
	users    map[string]models.User    // keyed by user ID
	messages map[string]models.Message // keyed by message ID
	mu       sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:    make(map[string]models.User),
		messages: make(map[string]models.Message),
	}
}

// Create adds a new user, enforcing the same uniqueness the real store does.
func (r *MockUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperrors.New(apperrors.KindConflict, "duplicate_key", "username or email already exists")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound()
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound()
}

// GetByID returns a user by ID.
func (r *MockUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound()
	}
	u := user
	return &u, nil
}

// Update replaces an existing user record.
func (r *MockUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound()
	}
	r.users[user.ID] = *user
	return nil
}

// RefreshVerificationCode issues a new code under the lock, mirroring the
// conditional-update contract of the real store.
func (r *MockUserRepository) RefreshVerificationCode(userID, code string, expiry, sentAt time.Time, cooldown time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok || (user.LastCodeSentAt != nil && user.LastCodeSentAt.After(sentAt.Add(-cooldown))) {
		return apperrors.ErrResendCooldown()
	}
	user.VerifyCode = code
	user.VerifyCodeExpiry = &expiry
	user.LastCodeSentAt = &sentAt
	r.users[userID] = user
	return nil
}

// AppendMessage stores a message for the given user.
func (r *MockUserRepository) AppendMessage(userID string, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.UserID = userID
	r.messages[message.ID] = *message
	return nil
}

// ListMessages returns the user's messages newest-first.
func (r *MockUserRepository) ListMessages(userID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.UserID == userID {
			messages = append(messages, m)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

// RemoveMessage deletes a message if it belongs to the given user.
func (r *MockUserRepository) RemoveMessage(userID, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.messages[messageID]
	if !ok || m.UserID != userID {
		return apperrors.ErrMessageNotFound()
	}
	delete(r.messages, messageID)
	return nil
}
