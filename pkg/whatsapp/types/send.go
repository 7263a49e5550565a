package types

// SendTextRequest is the body of POST /{phone-number-id}/messages for a text
// message
type SendTextRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             TextPayload `json:"text"`
}

type TextPayload struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

// APIErrorResponse is the error envelope returned by the Graph API
type APIErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}

type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id,omitempty"`
}
