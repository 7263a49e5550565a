package constants

// Server defaults
const (
	DefaultServerPort            = 3000
	DefaultBodyLimitBytes        = 5 << 20
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultGracefulShutdownSec   = 30
	ServerErrorChannelSize       = 1
)

// WhatsApp Cloud API defaults
const (
	DefaultVerifyToken      = "unifiedinboxtest"
	DefaultGraphAPIBaseURL  = "https://graph.facebook.com"
	DefaultGraphAPIVersion  = "v20.0"
	DefaultHTTPTimeoutSec   = 30
	MessagingProduct        = "whatsapp"
	MessageTypeText         = "text"
	MessageTypeInteractive  = "interactive"
	NonTextPlaceholder      = "[non-text message]"
	StatusTextPrefix        = "Message "
	WhatsAppRecordIDPrefix  = "wa_"
	RecordIDRandomSuffixLen = 8
)

// Store defaults
const (
	StoreBackendMemory           = "memory"
	StoreBackendSQLite           = "sqlite"
	DefaultSQLiteDSN             = "file::memory:?cache=shared"
	DefaultDatabaseRetryAttempts = 3
	DefaultRetryInitialMs        = 200
	DefaultRetryMaxMs            = 2000
)

// Circuit breaker defaults for the outbound client
const (
	DefaultBreakerMaxFailures = 5
	DefaultBreakerTimeoutSec  = 30
)

// Live feed
const (
	DefaultSubscriberBuffer  = 16
	DefaultWebsocketWriteSec = 5
)

// Privacy settings
const (
	DefaultPhoneMaskLength = 4
)
