// Package worker mirrors ledger transactions into the spreadsheet as ledger
// events arrive from the broker.
package worker

import (
	"context"
	"fmt"

	"flux/internal/amqp"
	"flux/internal/core"
	"flux/internal/ledger"
	"flux/internal/log"
	"flux/internal/sheets"
)

// TransactionReader is the slice of the repository the worker reads from.
type TransactionReader interface {
	Transaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
}

// Consumer delivers ledger events to a handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker handles synchronization of transactions from the repository to
// the sheets mirror.
type SyncWorker struct {
	repo     TransactionReader
	exporter sheets.TransactionExporter
	logger   *log.Logger
}

func NewSyncWorker(repo TransactionReader, exporter sheets.TransactionExporter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		repo:     repo,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes ledger events until ctx is canceled.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Sync worker started", log.FieldOperation, log.OpStartup)
	err := consumer.Consume(ctx, w.HandleEvent)
	w.logger.InfoContext(ctx, "Sync worker stopped", log.FieldOperation, log.OpShutdown)
	return err
}

// HandleEvent processes one ledger event. Events about other entities are
// acknowledged without work. A returned error requeues the delivery.
func (w *SyncWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if ledger.Entity(msg.Entity) != ledger.TransactionEntity {
		return nil
	}

	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldUserID, msg.UserID,
		"kind", msg.Kind,
		log.FieldCount, len(msg.AffectedIDs()))

	for _, id := range msg.AffectedIDs() {
		var err error
		if ledger.EventKind(msg.Kind) == ledger.Deleted {
			err = w.remove(ctx, id)
		} else {
			err = w.export(ctx, msg.UserID, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *SyncWorker) export(ctx context.Context, userID, id string) error {
	t, err := w.repo.Transaction(ctx, userID, id)
	if core.IsNotFound(err) {
		// Deleted after the event was published; its delete event follows.
		w.logger.WarnContext(ctx, "Transaction gone before sync, skipping",
			log.FieldUserID, userID,
			log.FieldTransactionID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", id, err)
	}

	ref, err := w.exporter.Export(ctx, t)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror transaction",
			log.FieldTransactionID, id,
			log.FieldError, err,
			log.FieldOperation, log.OpSync)
		return fmt.Errorf("export transaction %s: %w", id, err)
	}

	fields := log.NewFields().WithTransaction(id, t.Amount.Cents, t.Category)
	fields[log.FieldSheetsRef] = ref
	w.logger.InfoContext(ctx, "Successfully synced transaction", fields.ToSlice()...)
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, id string) error {
	if err := w.exporter.Remove(ctx, id); err != nil {
		w.logger.ErrorContext(ctx, "Failed to remove mirrored transaction",
			log.FieldTransactionID, id,
			log.FieldError, err,
			log.FieldOperation, log.OpDelete)
		return fmt.Errorf("remove transaction %s: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Successfully removed transaction", log.FieldTransactionID, id)
	return nil
}

// Resync exports every transaction of userID. It recovers the mirror after
// missed events or worker downtime.
func (w *SyncWorker) Resync(ctx context.Context, userID string) (synced int, err error) {
	ts, err := w.repo.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	errorCount := 0
	for _, t := range ts {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if _, err := w.exporter.Export(ctx, t); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction during resync",
				log.FieldTransactionID, t.ID,
				log.FieldError, err)
			errorCount++
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		log.FieldUserID, userID,
		"total", len(ts),
		"synced", synced,
		"errors", errorCount)

	if errorCount > 0 {
		return synced, fmt.Errorf("resync: %d of %d transactions failed", errorCount, len(ts))
	}
	return synced, nil
}
