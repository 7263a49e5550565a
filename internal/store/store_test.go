package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"unifiedinbox/internal/constants"
	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// memoryDSN gives each test its own shared-cache in-memory database
func memoryDSN(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(context.Background(), memoryDSN(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func sampleMessage(id string, direction models.Direction) models.Message {
	return models.Message{
		ID:         id,
		Channel:    models.ChannelWhatsApp,
		Direction:  direction,
		From:       "123",
		Text:       "text " + id,
		ReceivedAt: time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC),
		Status:     models.StatusUnread,
	}
}

func TestStore_PrependOrdersNewestFirst(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Prepend(ctx, sampleMessage("a", models.DirectionInbound)))
			require.NoError(t, s.Prepend(ctx, sampleMessage("b", models.DirectionOutbound)))
			require.NoError(t, s.Prepend(ctx, sampleMessage("c", models.DirectionOutboundStatus)))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "c", list[0].ID)
			assert.Equal(t, "b", list[1].ID)
			assert.Equal(t, "a", list[2].ID)

			count, err := s.Len(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}

func TestStore_RoundTripsFields(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			msg := models.Message{
				ID:         "wa_1_abcdef01",
				Channel:    models.ChannelWhatsApp,
				Direction:  models.DirectionOutbound,
				To:         "+905551112233",
				Text:       "hello",
				ReceivedAt: time.Date(2025, 10, 28, 15, 0, 0, 123000000, time.UTC),
				Status:     models.StatusPendingConfirm,
			}
			require.NoError(t, s.Prepend(ctx, msg))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, msg.ID, list[0].ID)
			assert.Equal(t, msg.Channel, list[0].Channel)
			assert.Equal(t, msg.Direction, list[0].Direction)
			assert.Equal(t, msg.To, list[0].To)
			assert.Empty(t, list[0].From)
			assert.Equal(t, msg.Text, list[0].Text)
			assert.True(t, msg.ReceivedAt.Equal(list[0].ReceivedAt))
			assert.Equal(t, msg.Status, list[0].Status)
		})
	}
}

func TestStore_ListIsSnapshot(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.Prepend(ctx, sampleMessage("a", models.DirectionInbound)))

			first, err := s.List(ctx)
			require.NoError(t, err)
			first[0].Text = "mutated"

			second, err := s.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, "text a", second[0].Text)
		})
	}
}

func TestStore_EmptyListIsNotNil(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			list, err := open(t).List(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Empty(t, list)
		})
	}
}

func TestStore_ConcurrentPrepend(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			const writers = 20
			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, s.Prepend(ctx, sampleMessage(fmt.Sprintf("m%d", i), models.DirectionInbound)))
				}(i)
			}
			wg.Wait()

			list, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, writers)

			seen := make(map[string]bool)
			for _, m := range list {
				seen[m.ID] = true
			}
			assert.Len(t, seen, writers)
		})
	}
}

func TestSeedDemo(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, SeedDemo(context.Background(), s))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "msg_1", list[0].ID)
	assert.Equal(t, models.ChannelWhatsApp, list[0].Channel)
	assert.Equal(t, "+905551112233", list[0].From)
	assert.Empty(t, list[0].Direction)

	assert.Equal(t, "msg_2", list[1].ID)
	assert.Equal(t, models.ChannelInstagram, list[1].Channel)

	assert.Equal(t, "msg_3", list[2].ID)
	assert.Equal(t, models.ChannelFacebook, list[2].Channel)
	assert.Equal(t, models.StatusRead, list[2].Status)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := New(ctx, models.StoreConfig{Backend: constants.StoreBackendMemory}, testLogger())
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := New(ctx, models.StoreConfig{Backend: constants.StoreBackendSQLite, Path: memoryDSN(t)}, testLogger())
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &SQLiteStore{}, s)
	})

	t.Run("sqlite rejects traversal", func(t *testing.T) {
		_, err := New(ctx, models.StoreConfig{Backend: constants.StoreBackendSQLite, Path: "../../inbox.db"}, testLogger())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeStore, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "directory traversal")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(ctx, models.StoreConfig{Backend: "redis"}, testLogger())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidConfig, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "unknown store backend: redis")
	})
}
