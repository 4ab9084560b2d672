package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

// Store is the slice of the repository the mirror worker needs.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListPendingMirror(ctx context.Context, limit int) ([]int64, error)
	MarkMirrored(ctx context.Context, id int64) error
	MarkMirrorError(ctx context.Context, id int64, message string) error
}

// MirrorWorker copies transactions from SQLite into the spreadsheet mirror.
// The database stays the source of truth; any sheet failure is recorded on
// the row and retried by the pending scan.
type MirrorWorker struct {
	store     Store
	mirror    sheets.Mirror
	batchSize int
}

func NewMirrorWorker(store Store, mirror sheets.Mirror, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &MirrorWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single queue message.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.MirrorMessage) error {
	switch msg.Action {
	case amqp.ActionMirror:
		return w.mirrorTransaction(ctx, msg.ID)
	case amqp.ActionDelete:
		return w.deleteRow(ctx, msg.ID)
	default:
		slog.WarnContext(ctx, "Unknown mirror action, dropping message",
			"id", msg.ID, "action", msg.Action)
		return nil
	}
}

func (w *MirrorWorker) mirrorTransaction(ctx context.Context, id int64) error {
	tx, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the worker got to it; nothing to mirror.
		slog.WarnContext(ctx, "Transaction gone before mirroring", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	// Idempotence: a row already in the sheet is only re-marked, never
	// appended twice.
	existing, err := w.mirror.FindRowByID(ctx, id)
	if err != nil {
		w.recordError(ctx, id, err)
		return fmt.Errorf("check existing mirror row: %w", err)
	}
	if existing == 0 {
		if _, err := w.mirror.Append(ctx, MirrorRowFor(tx)); err != nil {
			w.recordError(ctx, id, err)
			return fmt.Errorf("append mirror row: %w", err)
		}
	}

	if err := w.store.MarkMirrored(ctx, id); err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to sheet", "id", id)
	return nil
}

func (w *MirrorWorker) deleteRow(ctx context.Context, id int64) error {
	deleted, err := w.mirror.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete mirror row: %w", err)
	}
	if !deleted {
		slog.WarnContext(ctx, "No mirror row found for deleted transaction", "id", id)
	}
	return nil
}

// ProcessPending mirrors rows still marked pending. This is the backup path
// for lost queue messages and failed publishes.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.store.ListPendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending mirror rows", "count", len(ids))

	for _, id := range ids {
		if err := w.mirrorTransaction(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending transaction",
				"id", id, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once at worker startup, to
// recover from downtime.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	ids, err := w.store.ListPendingMirror(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending transactions for startup check: %w", err)
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending mirror rows on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending mirror rows on startup", "count", len(ids))

	var failed int
	for _, id := range ids {
		if err := w.mirrorTransaction(ctx, id); err != nil {
			failed++
		}
	}
	if failed > 0 {
		slog.WarnContext(ctx, "Startup mirror check finished with failures",
			"total", len(ids), "failed", failed)
	}
	return nil
}

// RunPendingScan calls ProcessPending on a fixed interval until the context
// ends.
func (w *MirrorWorker) RunPendingScan(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending mirror scan failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) recordError(ctx context.Context, id int64, cause error) {
	if err := w.store.MarkMirrorError(ctx, id, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to mark mirror error", "id", id, "error", err)
	}
}

// MirrorRowFor maps a transaction onto the sheet's column layout.
func MirrorRowFor(tx core.Transaction) sheets.MirrorRow {
	createdAt := ""
	if !tx.CreatedAt.IsZero() {
		createdAt = tx.CreatedAt.UTC().Format(time.RFC3339)
	}
	return sheets.MirrorRow{
		ID:          tx.ID,
		CreatedAt:   createdAt,
		Date:        tx.Date.String(),
		Description: tx.Description,
		Amount:      core.FormatDecimal(tx.Amount.Cents),
		Type:        string(tx.Type),
		Account:     tx.Account,
		Category:    tx.Category,
	}
}
