package services

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// MirrorPublisher enqueues mirror work for the sheet worker.
type MirrorPublisher interface {
	PublishMirror(ctx context.Context, id int64) error
	PublishDelete(ctx context.Context, id int64) error
}

// TransactionService orchestrates transaction writes across SQLite and AMQP.
// SQLite is the source of truth; the sheet mirror is best effort.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher MirrorPublisher
}

func NewTransactionService(repo *storage.SQLiteRepository, publisher MirrorPublisher) *TransactionService {
	return &TransactionService{
		storage:   repo,
		publisher: publisher,
	}
}

// CreateTransaction saves the transaction locally and enqueues the mirror.
// A publish failure never fails the request: the worker's pending scan
// picks the row up later.
func (s *TransactionService) CreateTransaction(ctx context.Context, in storage.TransactionInput) (core.Transaction, error) {
	tx, err := s.storage.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishMirror(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mirror message",
			"id", tx.ID, "error", err)
	}

	return tx, nil
}

// DeleteTransaction removes the transaction locally and enqueues the
// mirror-row removal.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *TransactionService) publishMirror(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Mirror publisher not available, skipping mirror message")
		return nil
	}
	return s.publisher.PublishMirror(ctx, id)
}

func (s *TransactionService) publishDelete(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Mirror publisher not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishDelete(ctx, id)
}
