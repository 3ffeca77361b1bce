//go:build unit

package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayproxy/internal/pkg/clock"
	"rayproxy/internal/pkg/config"
	"rayproxy/internal/usecase/shared"
)

var pushTime = time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)

func newTestServer(t *testing.T, pushHandler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		auth := base64.StdEncoding.EncodeToString([]byte("key:secret"))
		assert.Equal(t, "Basic "+auth, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-abc",
			"expires_in":   "3599",
		})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", pushHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenRequests
}

func testConfig(baseURL string) config.MpesaConfig {
	return config.MpesaConfig{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey123",
		CallbackURL:    "https://example.com/api/payments/mpesa/callback",
	}
}

func TestInitiateSTKPush(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the signed payload and returns the correlation ids", func(t *testing.T) {
		var captured stkPushPayload
		srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_ = json.NewEncoder(w).Encode(map[string]string{
				"MerchantRequestID": "m-1",
				"CheckoutRequestID": "ws_CO_42",
				"ResponseCode":      "0",
			})
		})

		c := NewClient(testConfig(srv.URL), clock.NewMockClock(pushTime))
		result, err := c.InitiateSTKPush(ctx, shared.STKPushRequest{
			PhoneNumber:      "254712345678",
			Amount:           500,
			AccountReference: "order-1",
			Description:      "Proxy Purchase - kenya",
		})
		require.NoError(t, err)

		assert.Equal(t, "ws_CO_42", result.CheckoutRequestID)
		assert.Equal(t, "m-1", result.MerchantRequestID)

		assert.Equal(t, "174379", captured.BusinessShortCode)
		assert.Equal(t, "CustomerPayBillOnline", captured.TransactionType)
		assert.Equal(t, "20260301123045", captured.Timestamp)
		wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey123" + "20260301123045"))
		assert.Equal(t, wantPassword, captured.Password)
		assert.Equal(t, "254712345678", captured.PartyA)
		assert.Equal(t, "254712345678", captured.PhoneNumber)
		assert.Equal(t, int64(500), captured.Amount)
	})

	t.Run("non-zero response code is a rejection", func(t *testing.T) {
		srv, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"ResponseCode":        "1",
				"ResponseDescription": "insufficient float",
			})
		})

		c := NewClient(testConfig(srv.URL), clock.NewMockClock(pushTime))
		_, err := c.InitiateSTKPush(ctx, shared.STKPushRequest{PhoneNumber: "254712345678", Amount: 500})
		assert.ErrorIs(t, err, ErrPushRejected)
	})

	t.Run("token is cached across pushes", func(t *testing.T) {
		srv, tokenRequests := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"CheckoutRequestID": "ws_CO_42",
				"ResponseCode":      "0",
			})
		})

		c := NewClient(testConfig(srv.URL), clock.NewMockClock(pushTime))
		for i := 0; i < 3; i++ {
			_, err := c.InitiateSTKPush(ctx, shared.STKPushRequest{PhoneNumber: "254712345678", Amount: 500})
			require.NoError(t, err)
		}
		assert.Equal(t, 1, *tokenRequests)
	})

	t.Run("token endpoint failure surfaces as a token error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		c := NewClient(testConfig(srv.URL), clock.NewMockClock(pushTime))
		_, err := c.InitiateSTKPush(ctx, shared.STKPushRequest{PhoneNumber: "254712345678", Amount: 500})
		assert.ErrorIs(t, err, ErrTokenRequest)
	})
}
