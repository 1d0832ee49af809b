package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CatalogEventQueue receives change notifications for the tariff catalog so
// downstream consumers (offer screens, notification widgets) can refresh.
const CatalogEventQueue = "tarif_catalog_events"

// CatalogEvent describes one catalog mutation.
type CatalogEvent struct {
	EntityType string    `json:"entity_type"` // guarantee | package | rc_tariff | tariff_grid
	EntityID   string    `json:"entity_id,omitempty"`
	Action     string    `json:"action"` // created | updated | deleted | replaced | reloaded
	OccurredAt time.Time `json:"occurred_at"`
}

// CatalogPublisher publishes catalog change events to RabbitMQ
type CatalogPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewCatalogPublisher creates a new catalog event publisher
func NewCatalogPublisher(conn *RabbitMQConnection) *CatalogPublisher {
	return &CatalogPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// Publish sends one catalog event to the tarif_catalog_events queue.
func (p *CatalogPublisher) Publish(ctx context.Context, evt CatalogEvent) error {
	// Ensure the queue exists
	_, err := p.conn.Channel.QueueDeclare(
		CatalogEventQueue, // queue name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",                // exchange
		CatalogEventQueue, // routing key (queue name)
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish catalog event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Catalog event published",
		"queue", CatalogEventQueue,
		"entity_type", evt.EntityType,
		"action", evt.Action,
	)

	return nil
}
