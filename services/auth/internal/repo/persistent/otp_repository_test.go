package persistent

import (
	"testing"
	"time"

	"tradelink/pkg/models"
	"tradelink/services/auth/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOtpTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SmsCode{}))
	return db
}

func TestOtpIssueAndVerify(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "123456"))
	assert.NoError(t, repo.Verify("13800138000", "123456"))
}

func TestOtpIssue_Cooldown(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "123456"))

	err := repo.Issue("13800138000", "654321")
	assert.ErrorIs(t, err, entity.ErrSendCooldown)
}

func TestOtpIssue_InvalidatesPriorChallenge(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "111111"))

	// Age the first challenge past the cooldown window.
	require.NoError(t, db.Model(&models.SmsCode{}).
		Where("phone = ?", "13800138000").
		Update("created_at", time.Now().Add(-2*time.Minute)).Error)

	require.NoError(t, repo.Issue("13800138000", "222222"))

	// The old code is dead, only the fresh one verifies.
	assert.ErrorIs(t, repo.Verify("13800138000", "111111"), entity.ErrCodeInvalid)
	assert.NoError(t, repo.Verify("13800138000", "222222"))
}

func TestOtpVerify_SpentCodeCannotBeReused(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "123456"))
	require.NoError(t, repo.Verify("13800138000", "123456"))

	assert.ErrorIs(t, repo.Verify("13800138000", "123456"), entity.ErrCodeInvalid)
}

func TestOtpVerify_Expired(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "123456"))
	require.NoError(t, db.Model(&models.SmsCode{}).
		Where("phone = ?", "13800138000").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	assert.ErrorIs(t, repo.Verify("13800138000", "123456"), entity.ErrCodeInvalid)
}

func TestOtpVerify_AttemptsExhausted(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	require.NoError(t, repo.Issue("13800138000", "123456"))

	// Three wrong guesses burn the challenge.
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, repo.Verify("13800138000", "000000"), entity.ErrCodeInvalid)
	}

	// The 4th attempt is rejected even with the correct code.
	assert.ErrorIs(t, repo.Verify("13800138000", "123456"), entity.ErrTooManyAttempts)
}

func TestOtpVerify_NoChallenge(t *testing.T) {
	db := setupOtpTestDB(t)
	repo := NewOtpRepository(db)

	assert.ErrorIs(t, repo.Verify("13800138000", "123456"), entity.ErrCodeInvalid)
}
