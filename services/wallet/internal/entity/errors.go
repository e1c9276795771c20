package entity

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("recharge order not found")
	ErrAlreadyReviewed = errors.New("order already reviewed")
	ErrInvalidPlan     = errors.New("unknown recharge plan")
	ErrInvalidAmount   = errors.New("recharge amount must be positive")
	ErrInvalidPayment  = errors.New("payment method must be wechat or alipay")
)
