package store

import (
	"context"
	"time"

	"unifiedinbox/internal/models"
)

// DemoMessages returns the static sample inbox shown before any webhook
// arrives. These records predate direction tracking and carry none.
func DemoMessages() []models.Message {
	return []models.Message{
		{
			ID:         "msg_1",
			Channel:    models.ChannelWhatsApp,
			From:       "+905551112233",
			Text:       "Merhaba, kargom nerede?",
			ReceivedAt: time.Date(2025, 10, 28, 15, 0, 0, 0, time.UTC),
			Status:     models.StatusUnread,
		},
		{
			ID:         "msg_2",
			Channel:    models.ChannelInstagram,
			From:       "insta_user_44",
			Text:       "Bu ürünün bedeni S var mı?",
			ReceivedAt: time.Date(2025, 10, 28, 15, 2, 13, 0, time.UTC),
			Status:     models.StatusUnread,
		},
		{
			ID:         "msg_3",
			Channel:    models.ChannelFacebook,
			From:       "fb_user_91",
			Text:       "Fiyat nedir?",
			ReceivedAt: time.Date(2025, 10, 28, 15, 5, 40, 0, time.UTC),
			Status:     models.StatusRead,
		},
	}
}

// SeedDemo loads DemoMessages so that msg_1 is listed first
func SeedDemo(ctx context.Context, s Store) error {
	demo := DemoMessages()
	for i := len(demo) - 1; i >= 0; i-- {
		if err := s.Prepend(ctx, demo[i]); err != nil {
			return err
		}
	}
	return nil
}
