package main

import (
	"fmt"
	"os"
	"time"

	"tradelink/pkg/config"
	"tradelink/pkg/database"
	"tradelink/pkg/logger"
	"tradelink/pkg/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, log *logger.Logger) error {
	if err := seedAdmin(db, log); err != nil {
		return err
	}
	if err := seedDemoUsers(db, log); err != nil {
		return err
	}
	return seedAnnouncements(db, log)
}

func seedAdmin(db *gorm.DB, log *logger.Logger) error {
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123456"
		log.Warn("ADMIN_PASSWORD not set, using default development password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Phone:      "13700000000",
		WechatID:   "tradelink_admin",
		InviteCode: "ADMIN001",
		Password:   string(hash),
		Role:       models.RoleAdmin,
		IsActive:   true,
	}

	var existing models.User
	if err := db.First(&existing, "phone = ?", admin.Phone).Error; err == nil {
		log.Info("Admin account already exists, skipping")
		return nil
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.Info("Created admin account %s", admin.Phone)
	return nil
}

func seedDemoUsers(db *gorm.DB, log *logger.Logger) error {
	demoUsers := []struct {
		phone    string
		wechatID string
		points   int
	}{
		{"13800138001", "wx_seller_demo", 500},
		{"13800138002", "wx_buyer_demo", 200},
		{"13800138003", "wx_trader_demo", 100},
	}

	for i, demo := range demoUsers {
		var existing models.User
		if err := db.First(&existing, "phone = ?", demo.phone).Error; err == nil {
			continue
		}

		user := &models.User{
			Phone:      demo.phone,
			WechatID:   demo.wechatID,
			InviteCode: fmt.Sprintf("DEMO%04d", i+1),
			Points:     demo.points,
			Role:       models.RoleUser,
			IsActive:   true,
		}
		if err := db.Create(user).Error; err != nil {
			return err
		}

		// Seed balances arrive as a single top-up style entry so the ledger
		// running total stays verifiable.
		entry := &models.PointTransaction{
			UserID:       user.ID,
			ChangeType:   models.PointChangeTopUp,
			Amount:       demo.points,
			BalanceAfter: demo.points,
			Description:  "测试账号初始积分",
		}
		if err := db.Create(entry).Error; err != nil {
			return err
		}

		log.Info("Created demo user %s with %d points", demo.phone, demo.points)
	}
	return nil
}

func seedAnnouncements(db *gorm.DB, log *logger.Logger) error {
	var count int64
	if err := db.Model(&models.Announcement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Announcements already exist, skipping")
		return nil
	}

	announcements := []*models.Announcement{
		{
			Title:    "欢迎使用交易信息撮合平台",
			Content:  "新用户注册即送100积分，邀请好友注册双方都有额外奖励。",
			Priority: 10,
			IsActive: true,
		},
		{
			Title:    "发布规则",
			Content:  fmt.Sprintf("发布一条信息消耗10积分，信息有效期%d小时，到期后可免费重新上架。", 72),
			Priority: 5,
			IsActive: true,
		},
		{
			Title:    "充值说明",
			Content:  "充值需人工审核，请上传转账凭证，审核通过后积分自动到账。",
			Priority: 1,
			IsActive: true,
		},
	}

	for _, a := range announcements {
		a.CreatedAt = time.Now()
		if err := db.Create(a).Error; err != nil {
			return err
		}
	}

	log.Info("Created %d announcements", len(announcements))
	return nil
}
