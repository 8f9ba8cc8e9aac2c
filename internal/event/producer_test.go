package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vanisarees/storefront/internal/collection"
	"github.com/vanisarees/storefront/internal/domain"
	"github.com/vanisarees/storefront/internal/repository/memory"
	pkgkafka "github.com/vanisarees/storefront/pkg/kafka"
	"github.com/vanisarees/storefront/pkg/logger"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, ev *pkgkafka.Event) error {
	args := m.Called(ctx, topic, ev)
	return args.Error(0)
}

var saree = domain.CollectionItem{ID: "p1", Name: "Silk Saree", Price: 2000, Image: "x.jpg"}

// --- Tests ---

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.wishlist.updated", TopicWishlistUpdated)

	_, err := TopicFor("orders")
	assert.Error(t, err)
}

func TestPublishCollectionUpdated(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())

	var sent *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicWishlistUpdated, mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*pkgkafka.Event) }).
		Return(nil).Once()

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, p.PublishCollectionUpdated(ctx, domain.CollectionWishlist, "s1", []domain.CollectionItem{saree}))

	require.NotNil(t, sent)
	assert.Equal(t, "wishlist.updated", sent.Type)
	assert.Equal(t, "s1", sent.Key)
	assert.Equal(t, "corr-1", sent.CorrelationID)

	var data CollectionUpdatedData
	require.NoError(t, sent.Decode(&data))
	assert.Equal(t, "s1", data.SessionID)
	assert.Equal(t, 1, data.ItemCount)
	assert.Equal(t, []domain.CollectionItem{saree}, data.Items)
	pub.AssertExpectations(t)
}

func TestPublishCollectionUpdated_EmptyListIsArray(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())

	var sent *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*pkgkafka.Event) }).
		Return(nil).Once()

	require.NoError(t, p.PublishCollectionUpdated(context.Background(), domain.CollectionCart, "s1", nil))
	assert.JSONEq(t, `{"session_id":"s1","items":[],"item_count":0}`, string(sent.Data))
}

func TestPublishCollectionUpdated_PublishError(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	err := p.PublishCollectionUpdated(context.Background(), domain.CollectionCart, "s1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish cart.updated event")
}

func TestObserver_PublishesPersistedSnapshots(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())
	pub.On("Publish", mock.Anything, TopicCartUpdated, mock.Anything).Return(errors.New("broker down"))

	store := collection.New[domain.CollectionItem](domain.CollectionCart, "cart:s1", memory.New(),
		collection.WithObserver[domain.CollectionItem](p.Observer(domain.CollectionCart, "s1")),
	)
	t.Cleanup(store.Close)

	require.True(t, store.Add(saree))
	store.Flush()

	// A publish failure never reaches the store.
	assert.Equal(t, []domain.CollectionItem{saree}, store.Items())
	pub.AssertCalled(t, "Publish", mock.Anything, TopicCartUpdated, mock.Anything)
}
