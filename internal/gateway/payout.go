package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/celebook/service-booking/internal/pkg/domain"
)

const payoutService = "payout-function"

// RefundRequest asks the payout function to return money to a client.
type RefundRequest struct {
	ClientID      uuid.UUID `json:"client_id"`
	BookingID     uuid.UUID `json:"booking_id"`
	AmountMinor   int64     `json:"amount"`
	Currency      string    `json:"currency"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
}

// IdempotencyKey identifies the reversal to the payout function. A booking is
// refunded at most once, so repeats of the same key must not move money again.
func (r RefundRequest) IdempotencyKey() string {
	return "refund-" + r.BookingID.String()
}

// RefundResult is the payout function's receipt for a reversal.
type RefundResult struct {
	Reference string
}

// PayoutReversalClient calls the hosted refund function.
type PayoutReversalClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewPayoutReversalClient creates a client for the refund function at endpoint.
func NewPayoutReversalClient(endpoint, apiKey string, timeout time.Duration, logger *zap.Logger) *PayoutReversalClient {
	return &PayoutReversalClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		breaker:  newBreaker(payoutService, logger),
		logger:   logger,
	}
}

type refundResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// ProcessRefund reverses a payment. Any failure, including a declined
// reversal, is returned as ExternalServiceError.
func (c *PayoutReversalClient) ProcessRefund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.process(ctx, req)
	})
	if err != nil {
		c.logger.Error("refund failed",
			zap.String("booking_id", req.BookingID.String()),
			zap.Int64("amount", req.AmountMinor),
			zap.Error(err),
		)
		return RefundResult{}, domain.NewExternalServiceError(payoutService, err)
	}
	return result.(RefundResult), nil
}

func (c *PayoutReversalClient) process(ctx context.Context, req RefundRequest) (RefundResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return RefundResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return RefundResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey())
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return RefundResult{}, err
	}
	defer resp.Body.Close()

	var body refundResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && resp.StatusCode < 300 {
		return RefundResult{}, fmt.Errorf("failed to decode refund response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RefundResult{}, fmt.Errorf("refund returned status %d: %s", resp.StatusCode, body.Message)
	}
	if !body.Success {
		return RefundResult{}, fmt.Errorf("refund declined: %s", body.Message)
	}
	return RefundResult{Reference: body.Reference}, nil
}
