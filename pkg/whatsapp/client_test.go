package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/pkg/circuitbreaker"
	"unifiedinbox/pkg/whatsapp/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPhoneNumberID = "1234567890"
	testAccessToken   = "test-access-token"
	testAPIVersion    = "v20.0"
)

func setupTestClient(t *testing.T, handler http.HandlerFunc) (*CloudClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:       server.URL,
		APIVersion:    testAPIVersion,
		PhoneNumberID: testPhoneNumberID,
		AccessToken:   testAccessToken,
		Timeout:       5 * time.Second,
	})
	return client, server
}

func TestCloudClient_SendText(t *testing.T) {
	var received types.SendTextRequest

	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v20.0/1234567890/messages", r.URL.Path)
		assert.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"messaging_product": "whatsapp",
			"to": "+905551112233",
			"type": "text",
			"text": {"body": "hello", "preview_url": false}
		}`, string(body))
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","contacts":[{"input":"+905551112233","wa_id":"905551112233"}],"messages":[{"id":"wamid.HBgM"}]}`))
	})

	result, err := client.SendText(context.Background(), "+905551112233", "hello")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.True(t, result.Accepted())
	assert.Nil(t, result.APIError)
	assert.Contains(t, string(result.Body), "wamid.HBgM")
	assert.Equal(t, "hello", received.Text.Body)
}

func TestCloudClient_SendText_ProviderError(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"fbtrace_id":"Abc"}}`))
	})

	result, err := client.SendText(context.Background(), "+1", "hi")
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	assert.False(t, result.Accepted())
	require.NotNil(t, result.APIError)
	assert.Equal(t, 190, result.APIError.Code)
	assert.Equal(t, "OAuthException", result.APIError.Type)
	assert.JSONEq(t, `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190,"fbtrace_id":"Abc"}}`, string(result.Body))
}

func TestCloudClient_SendText_NonJSONBody(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	result, err := client.SendText(context.Background(), "+1", "hi")
	require.NoError(t, err)
	assert.Equal(t, `"upstream unavailable"`, string(result.Body))
	assert.False(t, result.Accepted())
}

func TestCloudClient_SendText_EmptyBody(t *testing.T) {
	client, _ := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.SendText(context.Background(), "+1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "null", string(result.Body))
	assert.True(t, result.Accepted())
}

func TestCloudClient_SendText_MissingCredentials(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	tests := []struct {
		name          string
		phoneNumberID string
		accessToken   string
	}{
		{"missing phone number id", "", testAccessToken},
		{"missing access token", testPhoneNumberID, ""},
		{"missing both", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(ClientConfig{
				BaseURL:       server.URL,
				PhoneNumberID: tt.phoneNumberID,
				AccessToken:   tt.accessToken,
			})

			result, err := client.SendText(context.Background(), "+1", "hi")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeMissingConfig, apperrors.GetCode(err))
			assert.Equal(t, "WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_ACCESS_TOKEN must be set", apperrors.PublicMessage(err))
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCloudClient_SendText_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(ClientConfig{
		BaseURL:       url,
		PhoneNumberID: testPhoneNumberID,
		AccessToken:   testAccessToken,
	})

	result, err := client.SendText(context.Background(), "+1", "hi")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeWhatsAppAPI, apperrors.GetCode(err))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Contains(t, apperrors.PublicMessage(err), "connection refused")
}

func TestCloudClient_SendText_CircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	breaker := circuitbreaker.New("whatsapp", 2, time.Hour, logger)

	client := NewClient(ClientConfig{
		BaseURL:       url,
		PhoneNumberID: testPhoneNumberID,
		AccessToken:   testAccessToken,
		Breaker:       breaker,
	})

	for i := 0; i < 2; i++ {
		_, err := client.SendText(context.Background(), "+1", "hi")
		require.Error(t, err)
		assert.False(t, circuitbreaker.IsCircuitBreakerError(err))
	}

	_, err := client.SendText(context.Background(), "+1", "hi")
	require.Error(t, err)
	assert.True(t, circuitbreaker.IsCircuitBreakerError(err))
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientConfig{PhoneNumberID: "42"})

	assert.Equal(t, "https://graph.facebook.com/v20.0/42/messages", client.messagesURL())
	assert.Equal(t, 30*time.Second, client.client.Timeout)
}

func TestNormalizeRecipient(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"905551112233", "+905551112233"},
		{"+905551112233", "+905551112233"},
		{"++905551112233", "+905551112233"},
		{"", "+"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRecipient(tt.input))
		})
	}
}
