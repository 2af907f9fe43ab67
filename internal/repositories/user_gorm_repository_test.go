package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"whisperbox/internal/apperrors"
	"whisperbox/internal/models"
	"whisperbox/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *repositories.GORMUserRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))
	return repositories.NewGORMUserRepository(db)
}

func TestGORMUserRepository_CreateEnforcesUniqueness(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Username: "alice", Email: "a@x.com", Password: "hash"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID, "Create must assign an ID")

	// Same username, different email: the unique index rejects it.
	dup := &models.User{Username: "alice", Email: "b@x.com", Password: "hash"}
	err := repo.Create(dup)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// Same email, different username: rejected too.
	dup = &models.User{Username: "bob", Email: "a@x.com", Password: "hash"}
	err = repo.Create(dup)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestGORMUserRepository_Lookups(t *testing.T) {
	repo := setupRepo(t)

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	user := &models.User{
		Username:         "alice",
		Email:            "a@x.com",
		Password:         "hash",
		VerifyCode:       "482913",
		VerifyCodeExpiry: &expiry,
	}
	require.NoError(t, repo.Create(user))

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "482913", byName.VerifyCode)

	byEmail, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.GetByUsername("ghost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
}

func TestGORMUserRepository_Update(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Username: "alice", Email: "a@x.com", Password: "hash"}
	require.NoError(t, repo.Create(user))

	user.IsVerified = true
	user.VerifyCode = ""
	require.NoError(t, repo.Update(user))

	reloaded, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsVerified)
	assert.Empty(t, reloaded.VerifyCode)
}

func TestGORMUserRepository_RefreshVerificationCode(t *testing.T) {
	repo := setupRepo(t)

	lastSent := time.Now().Add(-2 * time.Minute)
	user := &models.User{
		Username:       "alice",
		Email:          "a@x.com",
		Password:       "hash",
		VerifyCode:     "482913",
		LastCodeSentAt: &lastSent,
	}
	require.NoError(t, repo.Create(user))

	// Cooldown elapsed: the conditional update goes through.
	now := time.Now()
	expiry := now.Add(time.Hour)
	require.NoError(t, repo.RefreshVerificationCode(user.ID, "555444", expiry, now, 60*time.Second))

	reloaded, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "555444", reloaded.VerifyCode)
	require.NotNil(t, reloaded.LastCodeSentAt)

	// The write above reset the clock, so an immediate retry matches zero
	// rows and fails with the cooldown error, leaving the row untouched.
	err = repo.RefreshVerificationCode(user.ID, "999888", expiry, time.Now(), 60*time.Second)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeResendCooldown))

	reloaded, err = repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "555444", reloaded.VerifyCode)

	// A record that never had a code sent passes the IS NULL branch.
	fresh := &models.User{Username: "bob", Email: "b@x.com", Password: "hash"}
	require.NoError(t, repo.Create(fresh))
	assert.NoError(t, repo.RefreshVerificationCode(fresh.ID, "111222", expiry, time.Now(), 60*time.Second))
}

func TestGORMUserRepository_Messages(t *testing.T) {
	repo := setupRepo(t)

	owner := &models.User{Username: "alice", Email: "a@x.com", Password: "hash", IsVerified: true}
	other := &models.User{Username: "bob", Email: "b@x.com", Password: "hash", IsVerified: true}
	require.NoError(t, repo.Create(owner))
	require.NoError(t, repo.Create(other))

	older := &models.Message{Content: "the first note in the inbox", CreatedAt: time.Now().Add(-time.Minute)}
	newer := &models.Message{Content: "the second note in the inbox", CreatedAt: time.Now()}
	require.NoError(t, repo.AppendMessage(owner.ID, older))
	require.NoError(t, repo.AppendMessage(owner.ID, newer))

	// Newest-first ordering.
	messages, err := repo.ListMessages(owner.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, newer.ID, messages[0].ID)
	assert.Equal(t, older.ID, messages[1].ID)

	// Another user cannot delete the owner's message.
	err = repo.RemoveMessage(other.ID, newer.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMessageNotFound))

	// The owner can, exactly once.
	require.NoError(t, repo.RemoveMessage(owner.ID, newer.ID))
	err = repo.RemoveMessage(owner.ID, newer.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMessageNotFound))

	messages, err = repo.ListMessages(owner.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, older.ID, messages[0].ID)

	// An empty inbox lists as empty, not as an error.
	messages, err = repo.ListMessages(other.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
