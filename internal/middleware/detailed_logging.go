package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"unifiedinbox/internal/httputil"
	"unifiedinbox/internal/service"
	"unifiedinbox/internal/tracing"

	"github.com/sirupsen/logrus"
)

// DetailedLoggingConfig controls what verbose request logging includes
type DetailedLoggingConfig struct {
	LogRequestHeaders bool
	LogRequestBody    bool
	MaxBodySize       int
	SensitiveHeaders  []string
	SkipEndpoints     []string
}

func DefaultDetailedLoggingConfig() DetailedLoggingConfig {
	return DetailedLoggingConfig{
		LogRequestHeaders: true,
		LogRequestBody:    true,
		MaxBodySize:       4096,
		SensitiveHeaders: []string{
			"authorization", "cookie", "x-hub-signature", "x-hub-signature-256",
		},
		SkipEndpoints: []string{"/health", "/metrics"},
	}
}

// DetailedLoggingMiddleware marks the request context verbose and logs
// headers and the head of the body at debug level
func DetailedLoggingMiddleware(logger *logrus.Logger, config DetailedLoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(service.WithVerbose(r.Context(), true))

			for _, skip := range config.SkipEndpoints {
				if r.URL.Path == skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			requestInfo := tracing.GetRequestInfo(r.Context())
			fields := logrus.Fields{
				service.LogFieldRequestID: requestInfo.RequestID,
				service.LogFieldMethod:    r.Method,
				service.LogFieldURL:       r.URL.String(),
				service.LogFieldRemoteIP:  httputil.ClientIP(r),
				service.LogFieldUserAgent: r.Header.Get("User-Agent"),
				"content_length":          r.ContentLength,
			}

			if config.LogRequestHeaders {
				headers := make(map[string]string, len(r.Header))
				for name, values := range r.Header {
					if isSensitiveHeader(name, config.SensitiveHeaders) {
						headers[name] = "***MASKED***"
					} else {
						headers[name] = strings.Join(values, ", ")
					}
				}
				fields["request_headers"] = headers
			}

			if config.LogRequestBody && r.Body != nil && isJSON(r) {
				head, err := io.ReadAll(io.LimitReader(r.Body, int64(config.MaxBodySize)))
				if err == nil || len(head) > 0 {
					fields["request_body"] = string(head)
				}
				r.Body = &replayBody{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
			}

			logger.WithFields(fields).Debug("Detailed request logging")
			next.ServeHTTP(w, r)
		})
	}
}

// replayBody re-serves the bytes already consumed for logging
type replayBody struct {
	io.Reader
	io.Closer
}

func isSensitiveHeader(name string, sensitive []string) bool {
	for _, s := range sensitive {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

func isJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
