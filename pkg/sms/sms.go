// Package sms wraps the Spug push gateway used for verification codes and
// admin alerts. Sends are fire-and-forget from the caller's point of view:
// the OTP row is persisted before the send and is not rolled back on failure.
package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tradelink/pkg/config"
)

type Client struct {
	pushURL     string
	userID      string
	appKey      string
	adminPhones []string
	httpClient  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		pushURL:     cfg.SMSPushURL,
		userID:      cfg.SMSUserID,
		appKey:      cfg.SMSAppKey,
		adminPhones: cfg.AdminPhones,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type pushRequest struct {
	UserID   string            `json:"user_id"`
	AppKey   string            `json:"app_key"`
	Mobile   []string          `json:"mobile"`
	Template string            `json:"template"`
	Params   map[string]string `json:"params"`
}

type pushResponse struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (c *Client) SendVerificationCode(phone, code string) error {
	return c.push([]string{phone}, "verify_code", map[string]string{
		"code": code,
		"app":  "交易信息撮合平台",
	})
}

// SendRechargeAlert notifies the admin reviewers that a new top-up order is
// waiting for manual review.
func (c *Client) SendRechargeAlert(userPhone, amount, orderNo string) error {
	if len(c.adminPhones) == 0 {
		return fmt.Errorf("no admin phones configured")
	}
	return c.push(c.adminPhones, "finance_recharge_alert", map[string]string{
		"user":     userPhone,
		"amount":   amount,
		"order_id": orderNo,
	})
}

func (c *Client) push(mobiles []string, template string, params map[string]string) error {
	body, err := json.Marshal(pushRequest{
		UserID:   c.userID,
		AppKey:   c.appKey,
		Mobile:   mobiles,
		Template: template,
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms request: %w", err)
	}

	resp, err := c.httpClient.Post(c.pushURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned HTTP %d", resp.StatusCode)
	}

	var result pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode sms gateway response: %w", err)
	}

	if result.Code != 0 && !result.Success {
		msg := result.Message
		if msg == "" {
			msg = result.Msg
		}
		return fmt.Errorf("sms gateway rejected send: %s", msg)
	}

	return nil
}
