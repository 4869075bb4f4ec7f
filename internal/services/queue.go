package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue/queueerror"
)

// Ledger events are only useful while fresh.
const eventTTLSeconds int32 = 24 * 60 * 60

// EventQueue writes ledger events to a single Azure storage queue.
type EventQueue struct {
	client *azqueue.QueueClient
	name   string
}

// NewEventQueue connects to QUEUE_SERVICE_URL and makes sure the
// EVENTS_QUEUE queue (default ledger-events) exists.
func NewEventQueue(ctx context.Context) (*EventQueue, error) {
	queueURL := os.Getenv("QUEUE_SERVICE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("QUEUE_SERVICE_URL environment variable is required")
	}

	name := os.Getenv("EVENTS_QUEUE")
	if name == "" {
		name = "ledger-events"
	}

	service, err := newQueueServiceClient(queueURL)
	if err != nil {
		return nil, err
	}

	q := &EventQueue{client: service.NewQueueClient(name), name: name}
	if _, err := q.client.Create(ctx, nil); err != nil && !queueerror.HasCode(err, queueerror.QueueAlreadyExists) {
		return nil, fmt.Errorf("failed to create events queue %s: %w", name, err)
	}

	slog.Info("event queue ready", "queue_url", queueURL, "queue", name)
	return q, nil
}

func newQueueServiceClient(queueURL string) (*azqueue.ServiceClient, error) {
	if isLocal(queueURL) {
		name, key := getAzuriteCredentials()
		cred, err := azqueue.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err := azqueue.NewServiceClientWithSharedKeyCredential(queueURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue service client with shared key: %w", err)
		}
		return client, nil
	}

	cred, err := newDefaultAzureCredential()
	if err != nil {
		return nil, fmt.Errorf("failed to create default azure credential: %w", err)
	}
	client, err := azqueue.NewServiceClient(queueURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service client: %w", err)
	}
	return client, nil
}

// Send writes message as base64 encoded JSON, the encoding the Functions
// queue trigger expects by default.
func (q *EventQueue) Send(ctx context.Context, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ttl := eventTTLSeconds
	_, err = q.client.EnqueueMessage(ctx, base64.StdEncoding.EncodeToString(body), &azqueue.EnqueueMessageOptions{
		TimeToLive: &ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to send event to %s: %w", q.name, err)
	}
	return nil
}
