package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	paypalSandboxBaseURL = "https://api-m.sandbox.paypal.com"
	paypalLiveBaseURL    = "https://api-m.paypal.com"
)

// PayPalClient implements PaymentGateway against the PayPal REST payments
// API. Approval happens off-site: CreatePayment returns a redirect URL, the
// payer authorizes there, and PayPal calls back with payment and payer ids
// for ExecutePayment.
type PayPalClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	returnBase   string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalClient creates a PayPal client. mode selects the sandbox or live
// API host; timeout bounds every provider call so a hung PayPal request
// cannot block a checkout indefinitely.
func NewPayPalClient(clientID, clientSecret, mode, returnBase string, timeout time.Duration) *PayPalClient {
	baseURL := paypalSandboxBaseURL
	if mode == "live" {
		baseURL = paypalLiveBaseURL
	}
	return &PayPalClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		returnBase:   returnBase,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ---- PayPal API request/response structs ----

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type paypalAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paypalTransaction struct {
	Amount      paypalAmount `json:"amount"`
	Description string       `json:"description,omitempty"`
}

type paypalRedirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type paypalCreateRequest struct {
	Intent       string              `json:"intent"`
	Payer        map[string]string   `json:"payer"`
	RedirectURLs paypalRedirectURLs  `json:"redirect_urls"`
	Transactions []paypalTransaction `json:"transactions"`
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalShippingAddress struct {
	Line1       string `json:"line1"`
	City        string `json:"city"`
	State       string `json:"state"`
	CountryCode string `json:"country_code"`
}

type paypalPaymentResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Payer struct {
		PayerInfo struct {
			FirstName       string                `json:"first_name"`
			LastName        string                `json:"last_name"`
			Email           string                `json:"email"`
			ShippingAddress paypalShippingAddress `json:"shipping_address"`
		} `json:"payer_info"`
	} `json:"payer"`
	Transactions []paypalTransaction `json:"transactions"`
	Links        []paypalLink        `json:"links"`
}

type paypalExecuteRequest struct {
	PayerID string `json:"payer_id"`
}

// CreatePayment opens a sale-intent payment and returns the approval link.
func (p *PayPalClient) CreatePayment(ctx context.Context, total, currency string) (*CreatedPayment, error) {
	reqBody := paypalCreateRequest{
		Intent: "sale",
		Payer:  map[string]string{"payment_method": "paypal"},
		RedirectURLs: paypalRedirectURLs{
			ReturnURL: p.returnBase + "/ecoMarket/success",
			CancelURL: p.returnBase + "/ecoMarket/cancel",
		},
		Transactions: []paypalTransaction{
			{
				Amount:      paypalAmount{Total: total, Currency: currency},
				Description: "ecoMarket order",
			},
		},
	}

	var resp paypalPaymentResponse
	if err := p.doJSON(ctx, http.MethodPost, "/v1/payments/payment", reqBody, &resp); err != nil {
		return nil, err
	}

	for _, link := range resp.Links {
		if link.Rel == "approval_url" {
			return &CreatedPayment{PaymentID: resp.ID, ApprovalURL: link.Href}, nil
		}
	}
	return nil, fmt.Errorf("paypal payment %s has no approval_url link", resp.ID)
}

// ExecutePayment captures the approved payment and returns the payer and
// amount data from PayPal's response.
func (p *PayPalClient) ExecutePayment(ctx context.Context, paymentID, payerID string) (*PaymentResult, error) {
	path := fmt.Sprintf("/v1/payments/payment/%s/execute", url.PathEscape(paymentID))

	var resp paypalPaymentResponse
	if err := p.doJSON(ctx, http.MethodPost, path, paypalExecuteRequest{PayerID: payerID}, &resp); err != nil {
		return nil, err
	}

	if resp.State != "approved" {
		return nil, fmt.Errorf("paypal payment %s not approved, state=%s", paymentID, resp.State)
	}
	if len(resp.Transactions) == 0 {
		return nil, fmt.Errorf("paypal payment %s has no transactions", paymentID)
	}

	info := resp.Payer.PayerInfo
	addr := info.ShippingAddress
	return &PaymentResult{
		PaymentID:       resp.ID,
		PayerFirstName:  info.FirstName,
		PayerLastName:   info.LastName,
		PayerEmail:      info.Email,
		ShippingAddress: strings.Join([]string{addr.Line1, addr.City, addr.State, addr.CountryCode}, ", "),
		Amount:          resp.Transactions[0].Amount.Total,
		Currency:        resp.Transactions[0].Amount.Currency,
	}, nil
}

// token returns a cached OAuth access token, refreshing it when close to
// expiry.
func (p *PayPalClient) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token error %s: %s", resp.Status, string(body))
	}

	var tok paypalTokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("paypal token decode failed: %w", err)
	}

	p.accessToken = tok.AccessToken
	// Refresh a minute early to avoid racing the expiry.
	p.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return p.accessToken, nil
}

func (p *PayPalClient) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("paypal error %s: %s", resp.Status, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("paypal response decode failed: %w", err)
		}
	}
	return nil
}
