package entity

import "errors"

var (
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrWechatTaken        = errors.New("wechat id already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCodeInvalid     = errors.New("verification code invalid or expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrSendCooldown    = errors.New("please wait before requesting another code")
)
