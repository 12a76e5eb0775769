package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/ports/adapter"
	"inet-marketplace/internal/infra/metrics"
)

const defaultTimeout = 15 * time.Second

// FastLipaGateway implements the USSD push-payment port against the
// FastLipa HTTP API.
type FastLipaGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zerolog.Logger
}

var _ adapter.PaymentGateway = (*FastLipaGateway)(nil)

func NewFastLipaGateway(baseURL, apiKey string, timeout time.Duration, logger *zerolog.Logger) *FastLipaGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FastLipaGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     logger,
	}
}

func (g *FastLipaGateway) Name() string { return "fastlipa" }

// fastLipaEnvelope is the common response wrapper. Any envelope whose
// status is not "success" is a provider-side rejection.
type fastLipaEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type createResponse struct {
	fastLipaEnvelope
	Data struct {
		TranID  string `json:"tranID"`
		Network string `json:"network"`
	} `json:"data"`
}

type statusResponse struct {
	fastLipaEnvelope
	Data struct {
		TranID        string `json:"tranID"`
		PaymentStatus string `json:"payment_status"`
	} `json:"data"`
}

// CreateTransaction POSTs a push-charge request. Not idempotent: a retry
// sends the customer a second USSD prompt.
func (g *FastLipaGateway) CreateTransaction(ctx context.Context, phone string, amount int64, payerName string) (adapter.Transaction, error) {
	body, err := json.Marshal(map[string]any{
		"number": phone,
		"amount": amount,
		"name":   payerName,
	})
	if err != nil {
		return adapter.Transaction{}, fmt.Errorf("marshal create-transaction body: %w", err)
	}

	var out createResponse
	if err := g.do(ctx, http.MethodPost, g.baseURL+"/create-transaction", bytes.NewReader(body), "create", &out); err != nil {
		return adapter.Transaction{}, err
	}

	if out.Status != "success" {
		metrics.IncGatewayRequest("create", "rejected")
		g.log.Warn().Str("provider_message", out.Message).Msg("fastlipa rejected create-transaction")
		return adapter.Transaction{}, fmt.Errorf("%w: %s", domain.ErrGatewayRejected, out.Message)
	}
	if out.Data.TranID == "" {
		metrics.IncGatewayRequest("create", "rejected")
		return adapter.Transaction{}, fmt.Errorf("%w: provider returned no transaction id", domain.ErrGatewayRejected)
	}

	metrics.IncGatewayRequest("create", "ok")
	return adapter.Transaction{TranID: out.Data.TranID, Network: out.Data.Network}, nil
}

// CheckStatus GETs the provider's view of a transaction. The raw
// payment_status string is returned untouched for the caller to normalize.
func (g *FastLipaGateway) CheckStatus(ctx context.Context, tranID string) (string, error) {
	var out statusResponse
	url := g.baseURL + "/status-transaction?tranid=" + tranID
	if err := g.do(ctx, http.MethodGet, url, nil, "status", &out); err != nil {
		return "", err
	}

	if out.Status != "success" {
		metrics.IncGatewayRequest("status", "rejected")
		return "", fmt.Errorf("%w: %s", domain.ErrGatewayRejected, out.Message)
	}

	metrics.IncGatewayRequest("status", "ok")
	return out.Data.PaymentStatus, nil
}

// do performs one authenticated round trip and decodes the JSON body into
// v. Transport-level failures map to ErrGatewayUnavailable.
func (g *FastLipaGateway) do(ctx context.Context, method, url string, body io.Reader, op string, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build fastlipa request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	metrics.ObserveGatewayLatency(op, time.Since(start).Seconds())
	if err != nil {
		metrics.IncGatewayRequest(op, "unavailable")
		g.log.Warn().Err(err).Str("op", op).Msg("fastlipa unreachable")
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncGatewayRequest(op, "unavailable")
		return fmt.Errorf("%w: read body: %v", domain.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		metrics.IncGatewayRequest(op, "unavailable")
		return fmt.Errorf("%w: http %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		metrics.IncGatewayRequest(op, "unavailable")
		return fmt.Errorf("%w: decode response: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil
}
