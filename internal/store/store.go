package store

import (
	"context"
	"fmt"
	"time"

	"unifiedinbox/internal/constants"
	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/retry"

	"github.com/sirupsen/logrus"
)

// Store is the ordered inbox. Prepend places a record at the head; List
// returns a snapshot copy, newest insertion first. Records are never updated
// or removed.
type Store interface {
	Prepend(ctx context.Context, msg models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// New opens the backend selected in cfg. The sqlite backend is opened with
// exponential backoff.
func New(ctx context.Context, cfg models.StoreConfig, logger logrus.FieldLogger) (Store, error) {
	switch cfg.Backend {
	case "", constants.StoreBackendMemory:
		return NewMemoryStore(), nil
	case constants.StoreBackendSQLite:
		dsn := cfg.Path
		if dsn == "" {
			dsn = constants.DefaultSQLiteDSN
		}

		backoff := retry.NewBackoff(retry.BackoffConfig{
			InitialDelay: time.Duration(constants.DefaultRetryInitialMs) * time.Millisecond,
			MaxDelay:     time.Duration(constants.DefaultRetryMaxMs) * time.Millisecond,
			Multiplier:   2.0,
			MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
			Jitter:       true,
		}).OnRetry(func(attempt int, delay time.Duration, err error) {
			logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"delay":   delay.String(),
				"error":   err.Error(),
			}).Warn("Failed to open sqlite store, retrying")
		})

		var s *SQLiteStore
		err := backoff.Retry(ctx, func() error {
			var openErr error
			s, openErr = NewSQLiteStore(ctx, dsn)
			return openErr
		})
		if err != nil {
			return nil, apperrors.NewStoreError("open", err)
		}
		return s, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, fmt.Sprintf("unknown store backend: %s", cfg.Backend))
	}
}
