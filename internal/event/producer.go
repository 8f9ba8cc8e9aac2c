package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanisarees/storefront/internal/domain"
	pkgkafka "github.com/vanisarees/storefront/pkg/kafka"
	"github.com/vanisarees/storefront/pkg/logger"
)

// Kafka topics for collection change events.
var (
	TopicCartUpdated     = pkgkafka.Topic(domain.CollectionCart, "updated")
	TopicWishlistUpdated = pkgkafka.Topic(domain.CollectionWishlist, "updated")
)

// SourceStorefront identifies events published by this service.
const SourceStorefront = "storefront"

// CollectionUpdatedData is the payload of a cart or wishlist update.
type CollectionUpdatedData struct {
	SessionID string                  `json:"session_id"`
	Items     []domain.CollectionItem `json:"items"`
	ItemCount int                     `json:"item_count"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes collection change events.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates a Producer.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{pub: pub, logger: logger}
}

// TopicFor returns the update topic of a collection.
func TopicFor(collection string) (string, error) {
	switch collection {
	case domain.CollectionCart:
		return TopicCartUpdated, nil
	case domain.CollectionWishlist:
		return TopicWishlistUpdated, nil
	default:
		return "", fmt.Errorf("no topic for collection %q", collection)
	}
}

// PublishCollectionUpdated publishes the full item list of one session's
// collection, keyed by session so updates stay ordered per shopper.
func (p *Producer) PublishCollectionUpdated(ctx context.Context, collection, sessionID string, items []domain.CollectionItem) error {
	topic, err := TopicFor(collection)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.CollectionItem{}
	}

	data := CollectionUpdatedData{
		SessionID: sessionID,
		Items:     items,
		ItemCount: len(items),
	}
	ev, err := pkgkafka.NewEvent(collection+".updated", sessionID, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s.updated event: %w", collection, err)
	}
	ev.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.pub.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s.updated event: %w", collection, err)
	}

	p.logger.DebugContext(ctx, "published collection update",
		slog.String("collection", collection),
		slog.String("session_id", sessionID),
		slog.Int("item_count", len(items)),
	)
	return nil
}

// Observer binds the producer to one session's collection. It satisfies
// collection.Observer and never fails the caller: publish errors are logged.
type Observer struct {
	producer   *Producer
	collection string
	sessionID  string
}

// Observer returns the change observer for collection of sessionID.
func (p *Producer) Observer(collection, sessionID string) *Observer {
	return &Observer{producer: p, collection: collection, sessionID: sessionID}
}

// CollectionChanged publishes the persisted snapshot.
func (o *Observer) CollectionChanged(ctx context.Context, _ string, items []domain.CollectionItem) {
	if err := o.producer.PublishCollectionUpdated(ctx, o.collection, o.sessionID, items); err != nil {
		o.producer.logger.WarnContext(ctx, "failed to publish collection update",
			slog.String("collection", o.collection),
			slog.String("session_id", o.sessionID),
			slog.String("error", err.Error()),
		)
	}
}
