package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

const paystackService = "paystack"

// ErrPaymentNotSuccessful is returned when the processor reports the
// transaction as anything other than a success.
var ErrPaymentNotSuccessful = errors.New("payment not successful")

// PaymentVerification is the processor's view of a transaction.
type PaymentVerification struct {
	Status      string
	Reference   string
	AmountMinor int64
	Currency    string
	PayerEmail  string
}

// Succeeded reports whether the processor settled the transaction.
func (v PaymentVerification) Succeeded() bool {
	return v.Status == "success"
}

// PaystackVerifier confirms checkout transactions server-side.
type PaystackVerifier struct {
	baseURL   string
	secretKey string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewPaystackVerifier creates a verifier against the Paystack REST API.
func NewPaystackVerifier(baseURL, secretKey string, timeout time.Duration, logger *zap.Logger) *PaystackVerifier {
	return &PaystackVerifier{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		breaker:   newBreaker(paystackService, logger),
		logger:    logger,
	}
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// Verify looks up a transaction by reference. Transport failures and non-2xx
// responses are returned as ExternalServiceError.
func (p *PaystackVerifier) Verify(ctx context.Context, reference string) (PaymentVerification, error) {
	if strings.TrimSpace(reference) == "" {
		return PaymentVerification{}, domain.NewMissingFieldsError("payment_reference")
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.verify(ctx, reference)
	})
	if err != nil {
		p.logger.Warn("payment verification failed", zap.String("reference", reference), zap.Error(err))
		return PaymentVerification{}, domain.NewExternalServiceError(paystackService, err)
	}
	return result.(PaymentVerification), nil
}

func (p *PaystackVerifier) verify(ctx context.Context, reference string) (PaymentVerification, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", p.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PaymentVerification{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return PaymentVerification{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PaymentVerification{}, fmt.Errorf("verify returned status %d", resp.StatusCode)
	}

	var body paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return PaymentVerification{}, fmt.Errorf("failed to decode verify response: %w", err)
	}
	if !body.Status {
		return PaymentVerification{}, fmt.Errorf("verify rejected: %s", body.Message)
	}

	return PaymentVerification{
		Status:      body.Data.Status,
		Reference:   body.Data.Reference,
		AmountMinor: body.Data.Amount,
		Currency:    body.Data.Currency,
		PayerEmail:  body.Data.Customer.Email,
	}, nil
}
