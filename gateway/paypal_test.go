package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayPal struct {
	tokenRequests   int
	createRequests  int
	executeRequests int
	failCreate      bool
	lastCreateBody  paypalCreateRequest
}

func (f *fakePayPal) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests++
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/v1/payments/payment", func(w http.ResponseWriter, r *http.Request) {
		f.createRequests++
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.failCreate {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"name":"INTERNAL_SERVICE_ERROR"}`))
			return
		}
		json.NewDecoder(r.Body).Decode(&f.lastCreateBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-123",
			"state": "created",
			"links": []map[string]string{
				{"href": "https://provider/self", "rel": "self", "method": "GET"},
				{"href": "https://provider/approve?token=X", "rel": "approval_url", "method": "REDIRECT"},
			},
		})
	})

	mux.HandleFunc("/v1/payments/payment/PAY-123/execute", func(w http.ResponseWriter, r *http.Request) {
		f.executeRequests++
		var req paypalExecuteRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.PayerID != "PAYER-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "PAY-123",
			"state": "approved",
			"payer": map[string]interface{}{
				"payer_info": map[string]interface{}{
					"first_name": "A",
					"last_name":  "B",
					"email":      "a@b.com",
					"shipping_address": map[string]string{
						"line1":        "1 Main St",
						"city":         "Springfield",
						"state":        "IL",
						"country_code": "US",
					},
				},
			},
			"transactions": []map[string]interface{}{
				{"amount": map[string]string{"total": "49.99", "currency": "USD"}},
			},
		})
	})

	return mux
}

func newTestClient(t *testing.T, fake *fakePayPal) *PayPalClient {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client := NewPayPalClient("client-id", "client-secret", "sandbox", "http://localhost:3001", 5*time.Second)
	client.baseURL = server.URL
	return client
}

func TestCreatePaymentReturnsApprovalURL(t *testing.T) {
	fake := &fakePayPal{}
	client := newTestClient(t, fake)

	created, err := client.CreatePayment(context.Background(), "49.99", "USD")
	require.NoError(t, err)

	assert.Equal(t, "PAY-123", created.PaymentID)
	assert.Equal(t, "https://provider/approve?token=X", created.ApprovalURL)
	assert.Equal(t, "sale", fake.lastCreateBody.Intent)
	assert.Equal(t, "49.99", fake.lastCreateBody.Transactions[0].Amount.Total)
	assert.Equal(t, "http://localhost:3001/ecoMarket/success", fake.lastCreateBody.RedirectURLs.ReturnURL)
	assert.Equal(t, "http://localhost:3001/ecoMarket/cancel", fake.lastCreateBody.RedirectURLs.CancelURL)
}

func TestCreatePaymentProviderError(t *testing.T) {
	fake := &fakePayPal{failCreate: true}
	client := newTestClient(t, fake)

	_, err := client.CreatePayment(context.Background(), "49.99", "USD")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestExecutePaymentParsesPayerInfo(t *testing.T) {
	fake := &fakePayPal{}
	client := newTestClient(t, fake)

	result, err := client.ExecutePayment(context.Background(), "PAY-123", "PAYER-1")
	require.NoError(t, err)

	assert.Equal(t, "A", result.PayerFirstName)
	assert.Equal(t, "B", result.PayerLastName)
	assert.Equal(t, "A B", result.CustomerName())
	assert.Equal(t, "a@b.com", result.PayerEmail)
	assert.Equal(t, "1 Main St, Springfield, IL, US", result.ShippingAddress)
	assert.Equal(t, "49.99", result.Amount)
	assert.Equal(t, "USD", result.Currency)
}

func TestTokenIsCachedAcrossCalls(t *testing.T) {
	fake := &fakePayPal{}
	client := newTestClient(t, fake)
	ctx := context.Background()

	_, err := client.CreatePayment(ctx, "10.00", "USD")
	require.NoError(t, err)
	_, err = client.ExecutePayment(ctx, "PAY-123", "PAYER-1")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.tokenRequests, "OAuth token should be fetched once and cached")
	assert.Equal(t, 1, fake.createRequests)
	assert.Equal(t, 1, fake.executeRequests)
}

func TestExecutePaymentNotApproved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "test-token", "expires_in": 3600})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "PAY-123", "state": "failed"})
	}))
	defer server.Close()

	client := NewPayPalClient("client-id", "client-secret", "sandbox", "http://localhost:3001", 5*time.Second)
	client.baseURL = server.URL

	_, err := client.ExecutePayment(context.Background(), "PAY-123", "PAYER-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not approved")
}
