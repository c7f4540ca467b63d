package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"medibill/internal/pkg/httpclient"
)

// PayOSGateway implements the Gateway interface for the PayOS v2 API.
type PayOSGateway struct {
	clientID    string
	apiKey      string
	checksumKey string
	baseURL     string
	client      *httpclient.Client
}

func NewPayOSGateway(clientID, apiKey, checksumKey, baseURL string, timeout time.Duration) *PayOSGateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PayOSGateway{
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		client: httpclient.New().
			WithTimeout(timeout).
			WithHeader("x-client-id", clientID).
			WithHeader("x-api-key", apiKey),
	}
}

func (p *PayOSGateway) Name() string {
	return "payos"
}

type payosEnvelope struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

func (p *PayOSGateway) CreateLink(ctx context.Context, req LinkRequest) (*LinkResult, error) {
	signature := p.sign(fmt.Sprintf(
		"amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL,
	))

	body := map[string]interface{}{
		"orderCode":   req.OrderCode,
		"amount":      req.Amount,
		"description": req.Description,
		"cancelUrl":   req.CancelURL,
		"returnUrl":   req.ReturnURL,
		"signature":   signature,
		"items": []map[string]interface{}{
			{"name": req.ItemName, "quantity": 1, "price": req.Amount},
		},
	}

	resp, err := p.client.Post(ctx, p.baseURL+"/v2/payment-requests", body)
	if err != nil {
		return nil, fmt.Errorf("payos create link failed: %w", err)
	}

	var envelope payosEnvelope
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("payos parse error: %w", err)
	}
	if envelope.Code != "00" {
		return nil, fmt.Errorf("payos create link rejected: %s (%s)", envelope.Desc, envelope.Code)
	}

	var data struct {
		CheckoutURL   string `json:"checkoutUrl"`
		PaymentLinkID string `json:"paymentLinkId"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("payos parse error: %w", err)
	}
	if data.CheckoutURL == "" {
		return nil, fmt.Errorf("payos no checkout url returned")
	}

	return &LinkResult{
		CheckoutURL:   data.CheckoutURL,
		PaymentLinkID: data.PaymentLinkID,
	}, nil
}

func (p *PayOSGateway) VerifyWebhook(raw []byte) (*WebhookResult, error) {
	var envelope payosEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("payos webhook parse error: %w", err)
	}
	if len(envelope.Data) == 0 || envelope.Signature == "" {
		return nil, ErrSignatureInvalid
	}

	expected, err := p.signJSON(envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("payos webhook parse error: %w", err)
	}
	if !hmac.Equal([]byte(expected), []byte(envelope.Signature)) {
		return nil, ErrSignatureInvalid
	}

	var data struct {
		OrderCode   int64  `json:"orderCode"`
		Code        string `json:"code"`
		Reference   string `json:"reference"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("payos webhook parse error: %w", err)
	}

	// The outcome is read from the signed data object, not the outer success
	// flag, which sits outside the HMAC and could be flipped in transit.
	return &WebhookResult{
		OrderCode:   data.OrderCode,
		Success:     data.Code == "00",
		Reference:   data.Reference,
		Description: data.Description,
	}, nil
}

func (p *PayOSGateway) GetInfo(ctx context.Context, orderCode int64) (*LinkInfo, error) {
	resp, err := p.client.Get(ctx, fmt.Sprintf("%s/v2/payment-requests/%d", p.baseURL, orderCode))
	if err != nil {
		return nil, fmt.Errorf("payos get info failed: %w", err)
	}

	var envelope payosEnvelope
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("payos parse error: %w", err)
	}
	if envelope.Code != "00" {
		return nil, fmt.Errorf("payos get info rejected: %s (%s)", envelope.Desc, envelope.Code)
	}

	var info LinkInfo
	if err := json.Unmarshal(envelope.Data, &info); err != nil {
		return nil, fmt.Errorf("payos parse error: %w", err)
	}
	return &info, nil
}

func (p *PayOSGateway) CancelLink(ctx context.Context, orderCode int64, reason string) error {
	body := map[string]interface{}{"cancellationReason": reason}
	resp, err := p.client.Post(ctx, fmt.Sprintf("%s/v2/payment-requests/%d/cancel", p.baseURL, orderCode), body)
	if err != nil {
		return fmt.Errorf("payos cancel failed: %w", err)
	}

	var envelope payosEnvelope
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return fmt.Errorf("payos parse error: %w", err)
	}
	if envelope.Code != "00" {
		return fmt.Errorf("payos cancel rejected: %s (%s)", envelope.Desc, envelope.Code)
	}
	return nil
}

// sign computes the hex HMAC-SHA256 of data with the checksum key.
func (p *PayOSGateway) sign(data string) string {
	mac := hmac.New(sha256.New, []byte(p.checksumKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// signJSON canonicalizes a JSON object the way PayOS does before signing:
// keys sorted alphabetically, values stringified, null as empty string,
// joined as key=value pairs with '&'.
func (p *PayOSGateway) signJSON(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return "", err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(stringifyField(fields[k]))
	}
	return p.sign(b.String()), nil
}

func stringifyField(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		encoded, _ := json.Marshal(t)
		return string(encoded)
	}
}
