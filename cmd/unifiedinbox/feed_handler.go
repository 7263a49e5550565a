package main

import (
	"context"
	"net/http"
	"time"

	"unifiedinbox/internal/constants"
	"unifiedinbox/internal/service"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleMessageFeed upgrades to a websocket and pushes every newly stored
// record as a JSON text frame. Client frames are ignored.
func (s *Server) handleMessageFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The server write timeout would otherwise cut long-lived feeds
		rc := http.NewResponseController(w)
		_ = rc.SetWriteDeadline(time.Time{})
		_ = rc.SetReadDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			s.requestLogger(r).WithError(err).Warn("Failed to accept live feed connection")
			return
		}
		defer conn.CloseNow()

		feed, cancel := s.inbox.Subscribe()
		defer cancel()

		logger := s.requestLogger(r).WithField(service.LogFieldComponent, "live_feed")
		logger.Info("Live feed subscriber connected")

		ctx := conn.CloseRead(r.Context())
		writeTimeout := time.Duration(constants.DefaultWebsocketWriteSec) * time.Second

		for {
			select {
			case <-ctx.Done():
				logger.Debug("Live feed subscriber disconnected")
				return
			case msg, ok := <-feed:
				if !ok {
					_ = conn.Close(websocket.StatusGoingAway, "feed closed")
					logger.Info("Live feed closed")
					return
				}

				writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(writeCtx, conn, msg)
				cancelWrite()
				if err != nil {
					logger.WithError(err).Warn("Failed to write to live feed subscriber")
					return
				}
			}
		}
	}
}
