//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inet-marketplace/internal/domain"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func decodeJSONBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
}

func TestCreateTransactionSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-transaction" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		decodeJSONBody(t, r, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"tranID":"TX-100","network":"vodacom"}}`))
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "secret-key", time.Second, testLogger())
	tx, err := g.CreateTransaction(context.Background(), "255712345678", 5000, "Asha")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.TranID != "TX-100" || tx.Network != "vodacom" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["number"] != "255712345678" || gotBody["amount"] != float64(5000) || gotBody["name"] != "Asha" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestCreateTransactionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"insufficient float"}`))
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	_, err := g.CreateTransaction(context.Background(), "0712345678", 1000, "")
	if !errors.Is(err, domain.ErrGatewayRejected) {
		t.Fatalf("want ErrGatewayRejected, got %v", err)
	}
}

func TestCreateTransactionMissingTranID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	_, err := g.CreateTransaction(context.Background(), "0712345678", 1000, "")
	if !errors.Is(err, domain.ErrGatewayRejected) {
		t.Fatalf("want ErrGatewayRejected, got %v", err)
	}
}

func TestCheckStatusSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status-transaction" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("tranid"); got != "TX-100" {
			t.Errorf("tranid = %q", got)
		}
		w.Write([]byte(`{"status":"success","data":{"tranID":"TX-100","payment_status":"COMPLETE"}}`))
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	status, err := g.CheckStatus(context.Background(), "TX-100")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != "COMPLETE" {
		t.Errorf("status = %q, want COMPLETE", status)
	}
}

func TestCheckStatusServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	_, err := g.CheckStatus(context.Background(), "TX-1")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("want ErrGatewayUnavailable, got %v", err)
	}
}

func TestCheckStatusTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	_, err := g.CheckStatus(context.Background(), "TX-1")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("want ErrGatewayUnavailable, got %v", err)
	}
}

func TestCheckStatusMalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway maintenance</html>`))
	}))
	defer srv.Close()

	g := NewFastLipaGateway(srv.URL, "k", time.Second, testLogger())
	_, err := g.CheckStatus(context.Background(), "TX-1")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("want ErrGatewayUnavailable, got %v", err)
	}
}
