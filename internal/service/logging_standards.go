package service

// Logging Standards for the unified inbox
//
// Standard field names, log levels and message patterns used across the
// service. Fields holding phone numbers or message bodies are masked by
// LogFields unless verbose logging is on.

// Standard Field Names
const (
	// Core identifiers
	LogFieldMessageID = "message_id"
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"
	LogFieldChannel   = "channel"
	LogFieldDirection = "direction" // "inbound", "outbound" or "outbound-status"
	LogFieldStatus    = "status"

	// Counterparts (masked)
	LogFieldFrom = "from"
	LogFieldTo   = "to"
	LogFieldText = "text"

	// Service and operation fields
	LogFieldService   = "service"
	LogFieldOperation = "operation"
	LogFieldComponent = "component"

	// Performance and metrics
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"
	LogFieldSize     = "size_bytes"

	// HTTP, network and external services
	LogFieldMethod     = "method"
	LogFieldURL        = "url"
	LogFieldUserAgent  = "user_agent"
	LogFieldEndpoint   = "endpoint"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"

	// Error and debugging
	LogFieldErrorCode = "error_code"
	LogFieldErrorType = "error_type"
	LogFieldPayload   = "payload"
)

// Log Level Usage Guidelines
//
// DEBUG: raw webhook payloads and provider responses (verbose mode only)
// INFO:  start-up, shutdown, records stored, replies sent
// WARN:  undecodable webhooks, provider rejections, retryable failures
// ERROR: store failures, transport failures on the reply path
// FATAL: configuration or store unavailable at start-up

// Standard Log Message Patterns
//
// Starting operations:  "Starting [operation]"
// Completed operations: "[Operation] completed"
// Failed operations:    "Failed to [operation]"
// Skipping operations:  "Skipping [operation]: [reason]"
//
// Example:
//
// logger.WithFields(LogFields(ctx, logrus.Fields{
//     LogFieldMessageID: msg.ID,
//     LogFieldDirection: msg.Direction,
//     LogFieldFrom:      msg.From,
// })).Info("Stored inbox record")
