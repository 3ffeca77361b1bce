// Package mpesa talks to the Daraja STK push API. The push is asynchronous:
// this client only obtains a CheckoutRequestID, the actual payment outcome
// arrives later on the callback endpoint.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/config"
	"rayproxy/internal/pkg/errs"
	"rayproxy/internal/usecase/shared"
)

var (
	ErrTokenRequest = errs.New("failed to obtain access token")
	ErrPushRejected = errs.New("stk push rejected by provider")
)

type Client struct {
	cfg        config.MpesaConfig
	httpClient *http.Client
	clock      clock.Clock

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg config.MpesaConfig, clk clock.Clock) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		clock:      clk,
	}
}

var _ shared.PaymentGateway = (*Client)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// Daraja tokens live an hour; refresh a minute early to avoid racing expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.clock.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(err, "failed to build token request")
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errs.Mark(errs.Wrap(err, "token request failed"), ErrTokenRequest)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errs.Mark(errs.New(fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode, body)), ErrTokenRequest)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errs.Mark(errs.Wrap(err, "failed to decode token response"), ErrTokenRequest)
	}
	if tr.AccessToken == "" {
		return "", errs.Mark(errs.New("empty access token"), ErrTokenRequest)
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = c.clock.Now().Add(59 * time.Minute)
	return c.accessToken, nil
}

type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

func (c *Client) InitiateSTKPush(ctx context.Context, push shared.STKPushRequest) (*shared.STKPushResult, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.clock.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))

	payload := stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            push.Amount,
		PartyA:            push.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       push.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.AccountReference,
		TransactionDesc:   push.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode stk push payload")
	}

	url := c.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build stk push request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "stk push request failed"), ErrPushRejected)
	}
	defer resp.Body.Close()

	var sr stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to decode stk push response"), ErrPushRejected)
	}

	if sr.ResponseCode != "0" {
		msg := sr.ResponseDescription
		if msg == "" {
			msg = sr.ErrorMessage
		}
		return nil, errs.Mark(errs.New(fmt.Sprintf("stk push not accepted: %s", msg)), ErrPushRejected)
	}

	return &shared.STKPushResult{
		MerchantRequestID: sr.MerchantRequestID,
		CheckoutRequestID: sr.CheckoutRequestID,
	}, nil
}
