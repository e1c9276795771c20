package sms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradelink/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, adminPhones []string) *Client {
	return NewClient(&config.Config{
		SMSPushURL:  url,
		SMSUserID:   "test-user",
		SMSAppKey:   "test-key",
		AdminPhones: adminPhones,
	})
}

func TestSendVerificationCode(t *testing.T) {
	var received pushRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	err := client.SendVerificationCode("13800138000", "123456")
	require.NoError(t, err)

	assert.Equal(t, []string{"13800138000"}, received.Mobile)
	assert.Equal(t, "verify_code", received.Template)
	assert.Equal(t, "123456", received.Params["code"])
}

func TestSendVerificationCode_GatewayRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 1, "msg": "quota exceeded"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	err := client.SendVerificationCode("13800138000", "123456")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSendRechargeAlert(t *testing.T) {
	var received pushRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer server.Close()

	client := newTestClient(server.URL, []string{"13900000001", "13900000002"})
	err := client.SendRechargeAlert("13800138000", "100", "R20260831000001")
	require.NoError(t, err)

	assert.Equal(t, []string{"13900000001", "13900000002"}, received.Mobile)
	assert.Equal(t, "finance_recharge_alert", received.Template)
	assert.Equal(t, "R20260831000001", received.Params["order_id"])
}

func TestSendRechargeAlert_NoAdminsConfigured(t *testing.T) {
	client := newTestClient("http://localhost:0", nil)
	err := client.SendRechargeAlert("13800138000", "100", "R1")
	assert.Error(t, err)
}
