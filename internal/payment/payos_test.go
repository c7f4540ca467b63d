package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksumKey = "test-checksum-key"

func newTestGateway(serverURL string) *PayOSGateway {
	return NewPayOSGateway("client-1", "api-key-1", testChecksumKey, serverURL, 5*time.Second)
}

func hmacHex(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateLink(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests", r.URL.Path)
		assert.Equal(t, "client-1", r.Header.Get("x-client-id"))
		assert.Equal(t, "api-key-1", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"code":"00","desc":"success","data":{"checkoutUrl":"https://pay.payos.vn/web/abc","paymentLinkId":"pl_1"},"signature":"sig"}`)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	result, err := gw.CreateLink(context.Background(), LinkRequest{
		OrderCode:   42_000123,
		Amount:      500000,
		Description: "Bill #42 payment",
		ItemName:    "Hospital bill #42",
		CancelURL:   "https://hospital.example.com/cancel",
		ReturnURL:   "https://hospital.example.com/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.payos.vn/web/abc", result.CheckoutURL)
	assert.Equal(t, "pl_1", result.PaymentLinkID)

	assert.Equal(t, float64(42_000123), gotBody["orderCode"])
	assert.Equal(t, float64(500000), gotBody["amount"])

	wantSig := hmacHex(testChecksumKey,
		"amount=500000&cancelUrl=https://hospital.example.com/cancel&description=Bill #42 payment&orderCode=42000123&returnUrl=https://hospital.example.com/return")
	assert.Equal(t, wantSig, gotBody["signature"])
}

func TestCreateLinkProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"231","desc":"order code already exists","data":null}`)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	_, err := gw.CreateLink(context.Background(), LinkRequest{OrderCode: 1, Amount: 1000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order code already exists")
}

func webhookPayload(t *testing.T, key string, data map[string]interface{}) []byte {
	t.Helper()

	// Canonical form: keys sorted, values stringified, joined with '&'.
	canonical := fmt.Sprintf(
		"amount=%v&code=%v&currency=%v&desc=%v&description=%v&orderCode=%v&reference=%v",
		data["amount"], data["code"], data["currency"], data["desc"], data["description"], data["orderCode"], data["reference"],
	)
	payload := map[string]interface{}{
		"code":      data["code"],
		"desc":      data["desc"],
		"success":   data["code"] == "00",
		"data":      data,
		"signature": hmacHex(key, canonical),
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}

func webhookData(code, desc string) map[string]interface{} {
	return map[string]interface{}{
		"orderCode":   42000123,
		"amount":      500000,
		"description": "Bill #42 payment",
		"reference":   "FT9000123",
		"currency":    "VND",
		"code":        code,
		"desc":        desc,
	}
}

func TestVerifyWebhook(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")
	raw := webhookPayload(t, testChecksumKey, webhookData("00", "success"))

	result, err := gw.VerifyWebhook(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42000123), result.OrderCode)
	assert.True(t, result.Success)
	assert.Equal(t, "FT9000123", result.Reference)
}

func TestVerifyWebhookFailureCode(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")
	raw := webhookPayload(t, testChecksumKey, webhookData("01", "payment failed"))

	result, err := gw.VerifyWebhook(raw)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestVerifyWebhookIgnoresUnsignedSuccessFlag(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")
	raw := webhookPayload(t, testChecksumKey, webhookData("01", "payment failed"))

	// Flip the outer success flag, which is not covered by the signature.
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["success"] = true
	flipped, err := json.Marshal(payload)
	require.NoError(t, err)

	result, err := gw.VerifyWebhook(flipped)
	require.NoError(t, err, "signature over data still holds")
	assert.False(t, result.Success, "outcome comes from the signed data, not the outer flag")
}

func TestVerifyWebhookBadSignature(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")
	raw := webhookPayload(t, "wrong-key", webhookData("00", "success"))

	_, err := gw.VerifyWebhook(raw)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyWebhookTamperedData(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")
	data := webhookData("00", "success")
	raw := webhookPayload(t, testChecksumKey, data)

	// Bump the amount after signing.
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	payload["data"].(map[string]interface{})["amount"] = 999999
	tampered, err := json.Marshal(payload)
	require.NoError(t, err)

	_, err = gw.VerifyWebhook(tampered)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyWebhookMissingSignature(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")

	_, err := gw.VerifyWebhook([]byte(`{"code":"00","success":true,"data":{"orderCode":1}}`))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifyWebhookMalformedPayload(t *testing.T) {
	gw := newTestGateway("https://api-merchant.payos.vn")

	_, err := gw.VerifyWebhook([]byte(`not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSignatureInvalid)
}

func TestGetInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests/42000123", r.URL.Path)
		fmt.Fprint(w, `{"code":"00","desc":"success","data":{"orderCode":42000123,"amount":500000,"amountPaid":500000,"status":"PAID"}}`)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	info, err := gw.GetInfo(context.Background(), 42000123)
	require.NoError(t, err)
	assert.Equal(t, int64(42000123), info.OrderCode)
	assert.Equal(t, "PAID", info.Status)
	assert.Equal(t, int64(500000), info.AmountPaid)
}

func TestCancelLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payment-requests/42000123/cancel", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "superseded", body["cancellationReason"])
		fmt.Fprint(w, `{"code":"00","desc":"success","data":{"orderCode":42000123,"status":"CANCELLED"}}`)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	assert.NoError(t, gw.CancelLink(context.Background(), 42000123, "superseded"))
}

func TestCancelLinkProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"429","desc":"link not found"}`)
	}))
	defer server.Close()

	gw := newTestGateway(server.URL)
	err := gw.CancelLink(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link not found")
}
