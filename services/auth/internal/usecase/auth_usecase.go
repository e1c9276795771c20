package usecase

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"

	"tradelink/pkg/jwt"
	"tradelink/pkg/logger"
	"tradelink/services/auth/internal/entity"
	"tradelink/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

var (
	phonePattern  = regexp.MustCompile(`^1[3-9]\d{9}$`)
	wechatPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{6,20}$`)
)

var (
	ErrInvalidPhone  = errors.New("invalid phone number format")
	ErrInvalidWechat = errors.New("invalid wechat id format")
)

const (
	inviteCodeLength      = 8
	inviteCodeRetries     = 10
	inviteCodeFallbackLen = 12
	inviteCodeCharset     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// SmsSender is the slice of the SMS gateway the auth flow needs.
type SmsSender interface {
	SendVerificationCode(phone, code string) error
}

type AuthUseCase interface {
	SendCode(phone string) (string, error)
	Register(phone, code, wechatID, inviteCode string) (*entity.User, string, error)
	Login(phone, code string) (*entity.User, string, error)
	AdminLogin(phone, password string) (*entity.User, string, error)
	GetUser(userID string) (*entity.User, error)
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	otpRepo    persistent.OtpRepository
	jwtService *jwt.Service
	smsClient  SmsSender
	logger     *logger.Logger
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	otpRepo persistent.OtpRepository,
	jwtService *jwt.Service,
	smsClient SmsSender,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		otpRepo:    otpRepo,
		jwtService: jwtService,
		smsClient:  smsClient,
		logger:     logger,
	}
}

// SendCode issues a challenge and pushes it through the SMS gateway. The
// challenge is persisted before the send, so a gateway failure is reported
// but does not invalidate the stored code.
func (uc *authUseCase) SendCode(phone string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	code := fmt.Sprintf("%06d", rand.Intn(900000)+100000)
	if err := uc.otpRepo.Issue(phone, code); err != nil {
		return "", err
	}

	if err := uc.smsClient.SendVerificationCode(phone, code); err != nil {
		uc.logger.Error("Failed to send verification code to %s: %v", phone, err)
		return "", fmt.Errorf("failed to send verification code: %w", err)
	}

	return code, nil
}

func (uc *authUseCase) Register(phone, code, wechatID, inviteCode string) (*entity.User, string, error) {
	if !phonePattern.MatchString(phone) {
		return nil, "", ErrInvalidPhone
	}
	if !wechatPattern.MatchString(wechatID) {
		return nil, "", ErrInvalidWechat
	}

	// Consumes the challenge; it stays spent even if registration fails below.
	if err := uc.otpRepo.Verify(phone, code); err != nil {
		return nil, "", err
	}

	if _, err := uc.userRepo.GetByPhone(phone); err == nil {
		return nil, "", entity.ErrPhoneTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", err
	}

	if _, err := uc.userRepo.GetByWechatID(wechatID); err == nil {
		return nil, "", entity.ErrWechatTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", err
	}

	inviterID := ""
	if inviteCode != "" {
		if inviter, err := uc.userRepo.GetByInviteCode(inviteCode); err == nil {
			inviterID = inviter.ID
		}
		// An unknown invite code is ignored, not an error.
	}

	newCode, err := uc.generateInviteCode()
	if err != nil {
		uc.logger.Error("Failed to generate invite code: %v", err)
		return nil, "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	user, err := uc.userRepo.RegisterUser(phone, wechatID, newCode, inviterID)
	if err != nil {
		uc.logger.Error("Failed to register user %s: %v", phone, err)
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := uc.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

func (uc *authUseCase) Login(phone, code string) (*entity.User, string, error) {
	if !phonePattern.MatchString(phone) {
		return nil, "", ErrInvalidPhone
	}

	if err := uc.otpRepo.Verify(phone, code); err != nil {
		return nil, "", err
	}

	user, err := uc.userRepo.GetByPhone(phone)
	if err != nil {
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", entity.ErrAccountDisabled
	}

	token, err := uc.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

func (uc *authUseCase) AdminLogin(phone, password string) (*entity.User, string, error) {
	admin, err := uc.userRepo.GetAdminByPhone(phone)
	if err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	if !admin.IsActive {
		return nil, "", entity.ErrAccountDisabled
	}

	token, err := uc.jwtService.GenerateToken(admin.ID, string(admin.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return persistent.ToUserEntity(admin), token, nil
}

func (uc *authUseCase) GetUser(userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(userID)
}

// generateInviteCode retries a bounded number of times and then widens the
// code space instead of looping forever; the DB unique constraint is the
// final arbiter either way.
func (uc *authUseCase) generateInviteCode() (string, error) {
	for i := 0; i < inviteCodeRetries; i++ {
		code := randomCode(inviteCodeLength)
		exists, err := uc.userRepo.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return randomCode(inviteCodeFallbackLen), nil
}

func randomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = inviteCodeCharset[rand.Intn(len(inviteCodeCharset))]
	}
	return string(b)
}
