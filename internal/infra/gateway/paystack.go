package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 30 * time.Second

	// SignatureHeader webhook簽名header
	SignatureHeader = "X-Paystack-Signature"

	// EventChargeSuccess 付款成功事件
	EventChargeSuccess = "charge.success"
)

var (
	// ErrGatewayUnavailable 對外一律收斂成這個錯誤: 非2xx / JSON解析失敗 / 逾時都算
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrTransactionNotSuccessful verify結果不是success
	ErrTransactionNotSuccessful = errors.New("transaction not successful")
)

// IPaymentGateway 金流介面, 只負責對外呼叫, 結果解讀交給service
type IPaymentGateway interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeData, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"` // 最小貨幣單位 (kobo)
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyData struct {
	Status     string          `json:"status"` // gateway回報的交易狀態: success / failed / abandoned
	Reference  string          `json:"reference"`
	Amount     int64           `json:"amount"`
	PaidAt     string          `json:"paid_at"`
	GatewayRef string          `json:"-"`
	Raw        json.RawMessage `json:"-"`
}

func (d *VerifyData) IsSuccess() bool {
	return d.Status == "success"
}

// WebhookEvent 入站通知
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ChargeData struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type PaystackClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPaystackClient(secretKey string, baseURL string, logger *zap.Logger) *PaystackClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PaystackClient{
		secretKey: secretKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// InitializeTransaction 建立交易, 回傳hosted payment page的authorization_url
func (c *PaystackClient) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	envelope, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var data InitializeData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Error("Malformed initialize response", zap.Error(err))
		return nil, ErrGatewayUnavailable
	}
	return &data, nil
}

// VerifyTransaction 主動查詢交易狀態, callback path不信任redirect本身
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*VerifyData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	envelope, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var data VerifyData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Error("Malformed verify response", zap.Error(err))
		return nil, ErrGatewayUnavailable
	}
	data.Raw = envelope.Data
	data.GatewayRef = data.Reference
	return &data, nil
}

// VerifyWebhookSignature 用secret key對raw body重算HMAC-SHA512, 常數時間比較
func (c *PaystackClient) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *PaystackClient) do(req *http.Request) (*apiEnvelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Gateway request failed",
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return nil, ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read gateway response", zap.Error(err))
		return nil, ErrGatewayUnavailable
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Gateway returned non-2xx",
			zap.String("url", req.URL.Path),
			zap.Int("status_code", resp.StatusCode))
		return nil, ErrGatewayUnavailable
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.Error("Malformed gateway response", zap.Error(err))
		return nil, ErrGatewayUnavailable
	}
	if !envelope.Status {
		c.logger.Error("Gateway rejected request", zap.String("message", envelope.Message))
		return nil, ErrGatewayUnavailable
	}
	return &envelope, nil
}

var _ IPaymentGateway = (*PaystackClient)(nil)
