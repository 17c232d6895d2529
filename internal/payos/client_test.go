package payos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		PayOSClientID:    "cid",
		PayOSAPIKey:      "key",
		PayOSChecksumKey: "checksum",
		PayOSBaseURL:     baseURL,
		PayOSCancelURL:   "https://app/cancel",
		PayOSReturnURL:   "https://app/return",
	})
}

func TestCreatePaymentLinkSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payment-requests" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-client-id") != "cid" || r.Header.Get("x-api-key") != "key" {
			t.Errorf("missing credentials headers")
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		want := Sign("amount=180000&cancelUrl=https://app/cancel&description=Artist 3m&orderCode=42&returnUrl=https://app/return", "checksum")
		if body["signature"] != want {
			t.Errorf("signature = %v, want %v", body["signature"], want)
		}
		w.Write([]byte(`{"code":"00","desc":"success","data":{"checkoutUrl":"https://pay/42"}}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).CreatePaymentLink(context.Background(), CheckoutRequest{
		OrderCode: 42, Amount: 180000, Description: "Artist 3m",
	})
	if err != nil {
		t.Fatalf("CreatePaymentLink: %v", err)
	}
	if !strings.Contains(string(raw), "checkoutUrl") {
		t.Fatalf("raw response not returned verbatim: %s", raw)
	}
}

func TestCreatePaymentLinkProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"231","desc":"order exists","data":null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreatePaymentLink(context.Background(), CheckoutRequest{
		OrderCode: 1, Amount: 1000, Description: "x",
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Body, "order exists") {
		t.Fatalf("err = %v, want APIError with provider body", err)
	}
}

func TestCreatePaymentLinkMissingFields(t *testing.T) {
	_, err := newTestClient("http://unused").CreatePaymentLink(context.Background(), CheckoutRequest{Amount: 1000})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func TestGetPaymentStatusUppercases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/payment-requests/77" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"code":"00","desc":"success","data":{"orderCode":77,"status":"paid"}}`))
	}))
	defer srv.Close()

	st, err := newTestClient(srv.URL).GetPaymentStatus(context.Background(), "77")
	if err != nil {
		t.Fatalf("GetPaymentStatus: %v", err)
	}
	if st.Status != "PAID" {
		t.Fatalf("status = %q, want PAID", st.Status)
	}
	if !strings.Contains(string(st.Raw), `"orderCode":77`) {
		t.Fatalf("raw = %s", st.Raw)
	}
}

func TestGetPaymentStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var apiErr *APIError
	if _, err := newTestClient(srv.URL).GetPaymentStatus(context.Background(), "1"); !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("err = %v, want APIError 401", err)
	}
}
