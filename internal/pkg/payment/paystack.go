package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/payflowhq/payflow/internal/pkg/env"
	"github.com/shopspring/decimal"
)

const (
	defaultPaystackAPIBaseURL = "https://api.paystack.co"

	endpointTransactionInitialize = "transaction/initialize"
	endpointTransferVerify        = "transfer/verify/%s"
)

// Gateway is the outbound provider contract the orchestrator depends on.
type Gateway interface {
	InitializeTransaction(ctx context.Context, in InitializeParams) (*InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference, authToken string) (*VerifyResult, error)
}

// InitializeParams is the input for creating a checkout session with the
// provider. AuthToken is the per-tenant business authorization token and is
// never cached between calls.
type InitializeParams struct {
	AuthToken   string
	Amount      decimal.Decimal
	Reference   string
	Email       string
	CallbackURL string
}

// InitializeResult carries the provider checkout handle for a new transaction.
type InitializeResult struct {
	CheckoutURL string
	AccessCode  string
	Reference   string
}

// VerifyResult carries the provider-reported outcome of a transaction.
type VerifyResult struct {
	Status          string
	Amount          decimal.Decimal
	PaidAt          *time.Time
	GatewayResponse string
}

// Succeeded reports whether the provider settled the transaction.
func (v *VerifyResult) Succeeded() bool {
	return strings.EqualFold(strings.TrimSpace(v.Status), "success")
}

// Resolved reports whether the provider reached a terminal answer. Statuses
// like "pending" or "ongoing" mean the provider itself has not settled yet.
func (v *VerifyResult) Resolved() bool {
	switch strings.ToLower(strings.TrimSpace(v.Status)) {
	case "success", "failed", "abandoned", "reversed":
		return true
	default:
		return false
	}
}

// PaystackClient talks to the Paystack REST API. The bearer credential is set
// freshly per request from the caller-supplied token; nothing tenant-specific
// is stored on the client or the underlying http.Client.
type PaystackClient struct {
	APIBaseURL string
	HTTPClient *http.Client
}

// NewPaystackClientFromEnv builds a client from PAYSTACK_* environment keys.
func NewPaystackClientFromEnv() *PaystackClient {
	return &PaystackClient{
		APIBaseURL: strings.TrimRight(env.GetEnv("PAYSTACK_API_BASE_URL", defaultPaystackAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Provider wire shapes. Paystack uses lowercase snake_case keys; the json tags
// are the deterministic mapping between internal names and the wire format.
type paystackInitializeRequest struct {
	Amount      string `json:"amount"`
	Email       string `json:"email,omitempty"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		GatewayResponse string `json:"gateway_response"`
		PaidAt          string `json:"paid_at"`
		Reference       string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction creates a checkout session for a pending transaction.
func (c *PaystackClient) InitializeTransaction(ctx context.Context, in InitializeParams) (*InitializeResult, error) {
	token := strings.TrimSpace(in.AuthToken)
	if token == "" {
		return nil, NewError(ErrConfiguration, "business authorization token is required")
	}
	if strings.TrimSpace(in.Reference) == "" {
		return nil, NewError(ErrValidation, "reference is required")
	}

	// Paystack expects the amount in subunits (kobo for NGN).
	payload := paystackInitializeRequest{
		Amount:      in.Amount.Mul(decimal.NewFromInt(100)).Round(0).String(),
		Email:       strings.TrimSpace(in.Email),
		Reference:   strings.TrimSpace(in.Reference),
		CallbackURL: strings.TrimSpace(in.CallbackURL),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(ErrTransport, err, "encode initialize request")
	}

	raw, err := c.post(ctx, endpointTransactionInitialize, token, body)
	if err != nil {
		return nil, err
	}

	var out paystackInitializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapError(ErrTransport, err, "decode initialize response")
	}
	if !out.Status {
		return nil, NewError(ErrGatewayRejection, "provider rejected initialize: %s", out.Message)
	}
	if strings.TrimSpace(out.Data.AuthorizationURL) == "" {
		return nil, NewError(ErrTransport, "initialize response missing authorization_url")
	}

	return &InitializeResult{
		CheckoutURL: out.Data.AuthorizationURL,
		AccessCode:  out.Data.AccessCode,
		Reference:   out.Data.Reference,
	}, nil
}

// VerifyTransaction asks the provider for the current state of a transaction.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference, authToken string) (*VerifyResult, error) {
	token := strings.TrimSpace(authToken)
	if token == "" {
		return nil, NewError(ErrConfiguration, "business authorization token is required")
	}
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return nil, NewError(ErrValidation, "reference is required")
	}

	raw, err := c.get(ctx, fmt.Sprintf(endpointTransferVerify, ref), token)
	if err != nil {
		return nil, err
	}

	var out paystackVerifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, WrapError(ErrTransport, err, "decode verify response")
	}
	if !out.Status {
		return nil, NewError(ErrGatewayRejection, "provider rejected verify: %s", out.Message)
	}

	result := &VerifyResult{
		Status:          strings.TrimSpace(out.Data.Status),
		Amount:          decimal.NewFromInt(out.Data.Amount).Div(decimal.NewFromInt(100)),
		GatewayResponse: strings.TrimSpace(out.Data.GatewayResponse),
	}
	if ts := strings.TrimSpace(out.Data.PaidAt); ts != "" {
		if paidAt, perr := time.Parse(time.RFC3339, ts); perr == nil {
			result.PaidAt = &paidAt
		}
	}
	return result, nil
}

func (c *PaystackClient) post(ctx context.Context, endpoint, token string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(ErrTransport, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, token)
}

func (c *PaystackClient) get(ctx context.Context, endpoint, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint), nil)
	if err != nil {
		return nil, WrapError(ErrTransport, err, "build request")
	}
	return c.send(req, token)
}

// send applies the per-call bearer credential and executes the request. A non-2xx
// answer becomes a gateway rejection carrying the raw body as an opaque
// diagnostic; transport failures stay transport errors.
func (c *PaystackClient) send(req *http.Request, token string) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, WrapError(ErrTransport, err, "request %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewError(ErrGatewayRejection, "status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *PaystackClient) endpointURL(endpoint string) string {
	return strings.TrimRight(c.APIBaseURL, "/") + "/" + endpoint
}
