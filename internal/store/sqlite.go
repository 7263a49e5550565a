package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "unifiedinbox/internal/errors"
	"unifiedinbox/internal/migrations"
	"unifiedinbox/internal/models"
	"unifiedinbox/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps records in a sqlite table ordered by insertion sequence.
// With the default shared-cache in-memory DSN the data lives as long as the
// process.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if err := security.ValidateSQLiteDSN(dsn); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A shared-cache in-memory database disappears once its last connection
	// closes; keep one connection pinned.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema, err := migrations.Schema()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to read schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Prepend(ctx context.Context, msg models.Message) error {
	query := `
		INSERT INTO inbox_messages (
			id, channel, direction, sender, recipient, text, received_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		string(msg.Channel),
		string(msg.Direction),
		msg.From,
		msg.To,
		msg.Text,
		msg.ReceivedAt.UTC().Format(time.RFC3339Nano),
		msg.Status,
	)
	if err != nil {
		return apperrors.NewStoreError("prepend", fmt.Errorf("failed to insert message: %w", err))
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]models.Message, error) {
	query := `
		SELECT id, channel, direction, sender, recipient, text, received_at, status
		FROM inbox_messages
		ORDER BY seq DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStoreError("list", fmt.Errorf("failed to query messages: %w", err))
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			msg        models.Message
			channel    string
			direction  string
			receivedAt string
		)
		if err := rows.Scan(&msg.ID, &channel, &direction, &msg.From, &msg.To, &msg.Text, &receivedAt, &msg.Status); err != nil {
			return nil, apperrors.NewStoreError("list", fmt.Errorf("failed to scan message: %w", err))
		}

		msg.Channel = models.Channel(channel)
		msg.Direction = models.Direction(direction)
		msg.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
		if err != nil {
			return nil, apperrors.NewStoreError("list", fmt.Errorf("invalid received_at %q: %w", receivedAt, err))
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("list", err)
	}

	return messages, nil
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inbox_messages").Scan(&count); err != nil {
		return 0, apperrors.NewStoreError("count", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
