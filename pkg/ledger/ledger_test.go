package ledger

import (
	"testing"
	"time"

	"tradelink/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PointTransaction{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, points int) *models.User {
	user := &models.User{
		Phone:      "13800138000",
		WechatID:   "wx_test_user",
		InviteCode: "TESTCODE",
		Points:     points,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCredit(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 0)

	balance, err := Credit(db, user.ID, 100, models.PointChangeReward, "新用户注册奖励", "", "")
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	var entry models.PointTransaction
	require.NoError(t, db.First(&entry, "user_id = ?", user.ID).Error)
	assert.Equal(t, 100, entry.Amount)
	assert.Equal(t, 100, entry.BalanceAfter)
	assert.Equal(t, models.PointChangeReward, entry.ChangeType)
}

func TestCredit_NoReferenceStoresNull(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 0)

	_, err := Credit(db, user.ID, 100, models.PointChangeReward, "新用户注册奖励", "", "")
	require.NoError(t, err)

	var entry models.PointTransaction
	require.NoError(t, db.First(&entry, "user_id = ?", user.ID).Error)
	assert.Nil(t, entry.RelatedID)
	assert.Nil(t, entry.OrderID)

	// The uuid columns reject '', so an absent reference must be NULL.
	var nullCount int64
	db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND related_id IS NULL AND order_id IS NULL", user.ID).
		Count(&nullCount)
	assert.Equal(t, int64(1), nullCount)

	var emptyCount int64
	db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND related_id = ''", user.ID).
		Count(&emptyCount)
	assert.Equal(t, int64(0), emptyCount)
}

func TestCredit_NonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 0)

	_, err := Credit(db, user.ID, 0, models.PointChangeReward, "", "", "")
	assert.Error(t, err)

	_, err = Credit(db, user.ID, -5, models.PointChangeReward, "", "", "")
	assert.Error(t, err)
}

func TestCredit_UserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := Credit(db, "missing-user", 10, models.PointChangeReward, "", "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDebit(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 100)

	balance, err := Debit(db, user.ID, 10, models.PointChangePublish, "发布信息", "post-1", "")
	require.NoError(t, err)
	assert.Equal(t, 90, balance)

	var entry models.PointTransaction
	require.NoError(t, db.First(&entry, "user_id = ?", user.ID).Error)
	assert.Equal(t, -10, entry.Amount)
	assert.Equal(t, 90, entry.BalanceAfter)
	require.NotNil(t, entry.RelatedID)
	assert.Equal(t, "post-1", *entry.RelatedID)
}

func TestDebit_InsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 5)

	_, err := Debit(db, user.ID, 10, models.PointChangeUnlock, "查看联系方式", "post-1", "")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Balance untouched, no entry written.
	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 5, fresh.Points)

	var count int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDebit_ExactBalance(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 10)

	balance, err := Debit(db, user.ID, 10, models.PointChangePublish, "发布信息", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestLedger_RunningTotalInvariant(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 0)

	ops := []struct {
		credit bool
		amount int
	}{
		{true, 100},
		{true, 30},
		{false, 10},
		{false, 1},
		{true, 1000},
		{false, 50},
	}

	for _, op := range ops {
		var err error
		if op.credit {
			_, err = Credit(db, user.ID, op.amount, models.PointChangeTopUp, "test", "", "")
		} else {
			_, err = Debit(db, user.ID, op.amount, models.PointChangePublish, "test", "", "")
		}
		require.NoError(t, err)
		time.Sleep(time.Millisecond) // distinct created_at timestamps
	}

	var entries []models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&entries).Error)
	require.Len(t, entries, len(ops))

	sum := 0
	prev := 0
	for _, e := range entries {
		sum += e.Amount
		assert.Equal(t, prev+e.Amount, e.BalanceAfter)
		prev = e.BalanceAfter
	}

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, sum, fresh.Points)
	assert.Equal(t, entries[len(entries)-1].BalanceAfter, fresh.Points)
}

func TestDebit_RollsBackWithTransaction(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := Debit(tx, user.ID, 10, models.PointChangePublish, "发布信息", "", ""); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.Error(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.Equal(t, 100, fresh.Points)

	var count int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
