// Package events fans document changes out over redis pub/sub so every open
// editor of a document can notice saves made elsewhere.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resumesync/internal/resume"
)

// 事件类型，字段名与前端解析保持一致。
const (
	TypeSectionSaved    = "section_saved"
	TypeHeaderUpdated   = "header_updated"
	TypeDocumentDeleted = "document_deleted"
	TypeArchived        = "archived"
	TypeArchiveFailed   = "archive_failed"
)

// Event is the message published for one document change.
type Event struct {
	Type          string            `json:"type"`
	DocumentID    uint              `json:"document_id"`
	Section       resume.SectionKey `json:"section,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	ErrorCode     int               `json:"error_code"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	ObjectKey     string            `json:"object_key,omitempty"`
	At            time.Time         `json:"at"`
}

// Channel returns the redis channel of a document.
func Channel(documentID uint) string {
	return fmt.Sprintf("document_events:%d", documentID)
}

// Bus publishes and subscribes document events.
type Bus struct {
	client *redis.Client
}

// NewBus 构造基于 Redis 的事件总线。
func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

// Publish sends e to the document's channel.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	channel := Channel(e.DocumentID)
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish event to %q: %w", channel, err)
	}
	return nil
}

// Subscribe streams raw event payloads of a document until ctx is done or
// the returned close function is called.
func (b *Bus) Subscribe(ctx context.Context, documentID uint) (<-chan string, func() error, error) {
	channel := Channel(documentID)
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %q: %w", channel, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}
