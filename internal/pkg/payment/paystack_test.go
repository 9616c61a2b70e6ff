package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newTestClient(srv *httptest.Server) *PaystackClient {
	return &PaystackClient{
		APIBaseURL: srv.URL,
		HTTPClient: srv.Client(),
	}
}

func TestInitializeTransactionSuccess(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "pf-ref-1"
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	res, err := c.InitializeTransaction(context.Background(), InitializeParams{
		AuthToken: "sk_test_xyz",
		Amount:    decimal.NewFromInt(5000),
		Reference: "pf-ref-1",
		Email:     "payer@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer sk_test_xyz" {
		t.Fatalf("expected per-call bearer credential, got %q", gotAuth)
	}
	if gotPath != "/transaction/initialize" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if res.CheckoutURL != "https://checkout.paystack.com/abc123" {
		t.Fatalf("unexpected checkout url %q", res.CheckoutURL)
	}
	if res.Reference != "pf-ref-1" {
		t.Fatalf("unexpected reference %q", res.Reference)
	}
}

func TestInitializeTransactionMissingToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.InitializeTransaction(context.Background(), InitializeParams{
		Amount:    decimal.NewFromInt(100),
		Reference: "pf-ref-2",
	})
	if !IsKind(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if called {
		t.Fatalf("expected no outbound call without a credential")
	}
}

func TestInitializeTransactionNonSuccessStatusCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid amount"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.InitializeTransaction(context.Background(), InitializeParams{
		AuthToken: "sk_test_xyz",
		Amount:    decimal.NewFromInt(100),
		Reference: "pf-ref-3",
	})
	if !IsKind(err, ErrGatewayRejection) {
		t.Fatalf("expected gateway rejection, got %v", err)
	}
	// The raw body is carried as an opaque diagnostic.
	if got := err.Error(); !strings.Contains(got, "Invalid amount") {
		t.Fatalf("expected raw body in error, got %q", got)
	}
}

func TestInitializeTransactionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv)
	srv.Close()

	_, err := c.InitializeTransaction(context.Background(), InitializeParams{
		AuthToken: "sk_test_xyz",
		Amount:    decimal.NewFromInt(100),
		Reference: "pf-ref-4",
	})
	if !IsKind(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestVerifyTransactionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transfer/verify/pf-ref-5" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"status": "success",
				"amount": 500000,
				"gateway_response": "Successful",
				"paid_at": "2025-03-10T12:00:00Z",
				"reference": "pf-ref-5"
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	res, err := c.VerifyTransaction(context.Background(), "pf-ref-5", "sk_test_xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Succeeded() || !res.Resolved() {
		t.Fatalf("expected resolved success, got status %q", res.Status)
	}
	if !res.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected amount converted from subunits, got %s", res.Amount)
	}
	want := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if res.PaidAt == nil || !res.PaidAt.Equal(want) {
		t.Fatalf("unexpected paid_at %v", res.PaidAt)
	}
}

func TestVerifyTransactionProviderStatuses(t *testing.T) {
	tests := []struct {
		status    string
		resolved  bool
		succeeded bool
	}{
		{status: "success", resolved: true, succeeded: true},
		{status: "failed", resolved: true, succeeded: false},
		{status: "abandoned", resolved: true, succeeded: false},
		{status: "pending", resolved: false, succeeded: false},
		{status: "ongoing", resolved: false, succeeded: false},
	}

	for _, tt := range tests {
		v := &VerifyResult{Status: tt.status}
		if v.Resolved() != tt.resolved {
			t.Fatalf("Resolved(%q) = %v, want %v", tt.status, v.Resolved(), tt.resolved)
		}
		if v.Succeeded() != tt.succeeded {
			t.Fatalf("Succeeded(%q) = %v, want %v", tt.status, v.Succeeded(), tt.succeeded)
		}
	}
}
