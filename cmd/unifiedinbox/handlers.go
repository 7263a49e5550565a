package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/httputil"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/service"

	"github.com/sirupsen/logrus"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

type replyRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type replyResponse struct {
	OK                  bool            `json:"ok"`
	WhatsAppAPIResponse json.RawMessage `json:"whatsapp_api_response"`
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, http.StatusOK, healthResponse{OK: true})
	}
}

func (s *Server) handleListMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := s.inbox.List(r.Context())
		if err != nil {
			apperrors.LogError(s.requestLogger(r), err, "Failed to list inbox")
			s.writeError(w, r, err)
			return
		}
		if messages == nil {
			messages = []models.Message{}
		}
		s.writeJSON(w, r, http.StatusOK, messages)
	}
}

// handleWhatsAppVerify answers the subscription handshake: the challenge is
// echoed verbatim when a mode is present and the token matches
func (s *Server) handleWhatsAppVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		mode := query.Get("hub.mode")
		token := query.Get("hub.verify_token")
		challenge := query.Get("hub.challenge")

		if mode == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.WhatsApp.VerifyToken)) != 1 {
			s.requestLogger(r).WithField("mode", mode).Warn("WhatsApp webhook verification failed")
			w.WriteHeader(http.StatusForbidden)
			return
		}

		s.requestLogger(r).WithField("mode", mode).Info("WhatsApp webhook verified")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, challenge)
	}
}

// handleWhatsAppWebhook always acknowledges with 200 so the provider never
// retries; problems are only logged
func (s *Server) handleWhatsAppWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.registry.IncrementCounter(service.MetricWebhookParseErrors, nil, "Webhook deliveries that could not be decoded")
			s.requestLogger(r).WithError(err).Warn("Failed to read WhatsApp webhook body")
			w.WriteHeader(http.StatusOK)
			return
		}

		s.inbox.HandleWebhook(r.Context(), body)
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleWhatsAppReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				s.writeJSON(w, r, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{Error: "request body too large"})
				return
			}
			if !errors.Is(err, io.EOF) {
				s.writeError(w, r, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid reply body").
					WithUserMessage("invalid JSON body"))
				return
			}
		}

		result, err := s.inbox.Reply(r.Context(), req.To, req.Text)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, r, http.StatusOK, replyResponse{
			OK:                  true,
			WhatsAppAPIResponse: result.ProviderResponse,
		})
	}
}

func (s *Server) requestLogger(r *http.Request) *logrus.Entry {
	return s.logger.WithFields(service.LogFields(r.Context(), nil))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if err := httputil.WriteJSON(w, status, v); err != nil {
		s.requestLogger(r).WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if encErr := httputil.WriteError(w, err); encErr != nil {
		s.requestLogger(r).WithError(encErr).Error("Failed to encode error response")
	}
}
