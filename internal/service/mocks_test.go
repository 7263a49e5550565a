package service

import (
	"context"
	"errors"

	"unifiedinbox/internal/models"
	"unifiedinbox/pkg/whatsapp"

	"github.com/stretchr/testify/mock"
)

type mockWhatsAppClient struct {
	mock.Mock
}

func (m *mockWhatsAppClient) SendText(ctx context.Context, to, text string) (*whatsapp.SendResult, error) {
	args := m.Called(ctx, to, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*whatsapp.SendResult), args.Error(1)
}

// failingStore rejects every write
type failingStore struct{}

var errStoreUnavailable = errors.New("store unavailable")

func (failingStore) Prepend(ctx context.Context, msg models.Message) error {
	return errStoreUnavailable
}

func (failingStore) List(ctx context.Context) ([]models.Message, error) {
	return nil, errStoreUnavailable
}

func (failingStore) Len(ctx context.Context) (int, error) {
	return 0, errStoreUnavailable
}
