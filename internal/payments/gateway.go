package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"buslane/internal/shared/config"

	"github.com/google/uuid"
)

// Intent is the gateway-side record of a payment attempt
type Intent struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret,omitempty"`
	Status       string `json:"status"`
}

// Gateway intent statuses as reported by the provider
const (
	IntentStatusPending  = "pending"
	IntentStatusApproved = "approved"
	IntentStatusDeclined = "declined"
)

type IntentRequest struct {
	// HoldID doubles as the idempotency key: retrying intent creation for
	// the same hold returns the original intent instead of a new charge.
	HoldID   uuid.UUID
	Amount   float64
	Currency string
}

// Gateway abstracts the card payment provider
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ConfirmIntent(ctx context.Context, reference string) (*Intent, error)
}

// NewGateway returns the HTTP gateway, or the in-process stub when
// GATEWAY_USE_STUB is set.
func NewGateway(cfg *config.GatewayConfig) Gateway {
	if cfg.UseStub {
		return NewStubGateway()
	}
	return NewHTTPGateway(cfg)
}

// HTTPGateway talks JSON to the payment provider
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(cfg *config.GatewayConfig) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payload := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.HoldID.String())

	return g.do(httpReq)
}

func (g *HTTPGateway) ConfirmIntent(ctx context.Context, reference string) (*Intent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/intents/"+reference+"/confirm", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	return g.do(httpReq)
}

func (g *HTTPGateway) do(req *http.Request) (*Intent, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrGateway, resp.StatusCode)
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, ErrPaymentRejected
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: provider returned %d: %s", ErrGateway, resp.StatusCode, body)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("%w: invalid provider response: %v", ErrGateway, err)
	}
	return &intent, nil
}

// StubGateway approves every intent. Used in development and tests.
type StubGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
	byHold  map[uuid.UUID]string
}

func NewStubGateway() *StubGateway {
	return &StubGateway{
		intents: make(map[string]*Intent),
		byHold:  make(map[uuid.UUID]string),
	}
}

func (g *StubGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ref, ok := g.byHold[req.HoldID]; ok {
		return g.intents[ref], nil
	}

	intent := &Intent{
		Reference:    "stub_" + uuid.NewString(),
		ClientSecret: "secret_" + uuid.NewString(),
		Status:       IntentStatusPending,
	}
	g.intents[intent.Reference] = intent
	g.byHold[req.HoldID] = intent.Reference
	return intent, nil
}

func (g *StubGateway) ConfirmIntent(_ context.Context, reference string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[reference]
	if !ok {
		return nil, ErrPaymentRejected
	}
	intent.Status = IntentStatusApproved
	return intent, nil
}

var _ Gateway = (*HTTPGateway)(nil)
var _ Gateway = (*StubGateway)(nil)
