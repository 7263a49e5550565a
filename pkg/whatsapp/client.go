package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"unifiedinbox/internal/constants"
	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/pkg/circuitbreaker"
	"unifiedinbox/pkg/whatsapp/types"
)

// ErrMissingCredentials is returned before any network call when the phone
// number id or access token is not configured.
var ErrMissingCredentials = apperrors.NewConfigError("whatsapp.credentials",
	"WHATSAPP_PHONE_NUMBER_ID and WHATSAPP_ACCESS_TOKEN must be set")

const maxResponseBytes = 1 << 20

type Client interface {
	SendText(ctx context.Context, to, text string) (*SendResult, error)
}

// SendResult carries the provider response. The send is considered done
// regardless of StatusCode; APIError is filled when the body holds a Graph
// API error object.
type SendResult struct {
	StatusCode int
	Body       json.RawMessage
	APIError   *types.APIError
}

// Accepted reports whether the provider answered 2xx without an error object
func (r *SendResult) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.APIError == nil
}

type ClientConfig struct {
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Breaker       *circuitbreaker.CircuitBreaker
}

// CloudClient talks to the WhatsApp Cloud API send endpoint
type CloudClient struct {
	baseURL       string
	apiVersion    string
	phoneNumberID string
	accessToken   string
	client        *http.Client
	breaker       *circuitbreaker.CircuitBreaker
}

func NewClient(config ClientConfig) *CloudClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultGraphAPIBaseURL
	}
	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = constants.DefaultGraphAPIVersion
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = time.Duration(constants.DefaultHTTPTimeoutSec) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &CloudClient{
		baseURL:       baseURL,
		apiVersion:    apiVersion,
		phoneNumberID: config.PhoneNumberID,
		accessToken:   config.AccessToken,
		client:        httpClient,
		breaker:       config.Breaker,
	}
}

// NormalizeRecipient strips any leading plus signs and adds exactly one
func NormalizeRecipient(to string) string {
	return "+" + strings.TrimLeft(to, "+")
}

func (c *CloudClient) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
}

// SendText posts a single text message. Only transport and encoding failures
// are returned as errors; provider-side rejections come back in SendResult.
func (c *CloudClient) SendText(ctx context.Context, to, text string) (*SendResult, error) {
	if c.phoneNumberID == "" || c.accessToken == "" {
		return nil, ErrMissingCredentials
	}

	payload, err := json.Marshal(types.SendTextRequest{
		MessagingProduct: constants.MessagingProduct,
		To:               to,
		Type:             constants.MessageTypeText,
		Text:             types.TextPayload{Body: text, PreviewURL: false},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to marshal payload")
	}

	var result *SendResult
	send := func(ctx context.Context) error {
		var sendErr error
		result, sendErr = c.post(ctx, payload)
		return sendErr
	}

	if c.breaker != nil {
		err = c.breaker.Execute(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *CloudClient) post(ctx context.Context, payload []byte) (*SendResult, error) {
	endpoint := c.messagesURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewAPIError(endpoint, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewAPIError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.NewAPIError(endpoint, resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	result := &SendResult{
		StatusCode: resp.StatusCode,
		Body:       rawJSON(body),
	}

	var apiErr types.APIErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
		result.APIError = apiErr.Error
	}
	return result, nil
}

// rawJSON returns body unchanged when it is valid JSON, otherwise the body
// encoded as a JSON string
func rawJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
