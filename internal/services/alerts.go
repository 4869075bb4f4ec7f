package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/rocjay1/ledger-sync/internal/models"
)

// HaltNotifier is the subset of Mailer used by QueueAlerter.
type HaltNotifier interface {
	SendQueueHaltEmail(ctx context.Context, recipients []string, items []models.QueueItem) error
}

// QueueAlerter emails once each time the queue enters the error state.
type QueueAlerter struct {
	notifier   HaltNotifier
	recipients []string

	mu     sync.Mutex
	halted bool
}

// NewQueueAlerter reads recipients from the comma separated ALERT_EMAIL.
// It returns nil when no recipient is configured.
func NewQueueAlerter(notifier HaltNotifier) *QueueAlerter {
	var recipients []string
	for _, addr := range strings.Split(os.Getenv("ALERT_EMAIL"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return nil
	}
	return &QueueAlerter{notifier: notifier, recipients: recipients}
}

func (a *QueueAlerter) QueueChanged(ctx context.Context, items []models.QueueItem, status models.QueueStatus) {
	halted := status == models.QueueStatusError
	a.mu.Lock()
	wasHalted := a.halted
	a.halted = halted
	a.mu.Unlock()

	if !halted || wasHalted {
		return
	}

	if err := a.notifier.SendQueueHaltEmail(ctx, a.recipients, items); err != nil {
		slog.Error("failed to send queue halt alert", "recipients", a.recipients, "error", err)
		return
	}
	slog.Info("sent queue halt alert", "recipients", a.recipients, "pending", len(items))
}

func (a *QueueAlerter) DocumentChanged(ctx context.Context, doc models.Document) {}
