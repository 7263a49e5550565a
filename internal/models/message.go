package models

import (
	"time"
)

type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
	ChannelFacebook  Channel = "facebook"
)

type Direction string

const (
	DirectionInbound        Direction = "inbound"
	DirectionOutbound       Direction = "outbound"
	DirectionOutboundStatus Direction = "outbound-status"
)

// Locally assigned statuses. Delivery statuses relayed from the provider
// ("sent", "delivered", "read", "failed") are stored verbatim.
const (
	StatusUnread         = "unread"
	StatusRead           = "read"
	StatusPendingConfirm = "sent(pending-confirm)"
)

// Message is a normalized inbox record. Records are never mutated once they
// have been handed to a store.
type Message struct {
	ID         string    `json:"id"`
	Channel    Channel   `json:"channel"`
	Direction  Direction `json:"direction,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
	Status     string    `json:"status"`
}

// Counterpart returns the remote party of the record regardless of direction.
func (m Message) Counterpart() string {
	if m.From != "" {
		return m.From
	}
	return m.To
}
