package amqp

import (
	"context"
	"time"

	"flux/internal/ledger"
	"flux/internal/log"
)

// Publisher sends ledger events to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg *LedgerEventMessage) error
}

// EventForwarder publishes the persistent events of ledger stores. Failures
// are logged; they never reach the mutation that caused them.
type EventForwarder struct {
	pub     Publisher
	logger  *log.Logger
	timeout time.Duration
}

func NewEventForwarder(pub Publisher, logger *log.Logger) *EventForwarder {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventForwarder{
		pub:     pub,
		logger:  logger.WithComponent(log.ComponentAMQP),
		timeout: publishTimeout,
	}
}

// Attach subscribes the forwarder to s. It fits ledger.Registry.OnOpen.
func (f *EventForwarder) Attach(s *ledger.Store) {
	s.Subscribe(f.Handle)
}

// Handle publishes ev if it concerns persisted data.
func (f *EventForwarder) Handle(ev ledger.Event) {
	if !ev.Persistent() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := f.pub.Publish(ctx, NewLedgerEventMessage(ev)); err != nil {
		f.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			log.FieldUserID, ev.UserID,
			log.FieldEntity, string(ev.Entity),
			log.FieldEntityID, ev.ID)
	}
}
