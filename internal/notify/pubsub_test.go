package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/fdadash/devicefeed/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestPubSubPublisherRoundTrip(t *testing.T) {
	ctx := context.Background()

	// Create a fake Pub/Sub server.
	srv := pstest.NewServer()
	defer srv.Close()

	// Connect to the fake server.
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client, err := pubsub.NewClient(ctx, "project-id", option.WithGRPCConn(conn))
	require.NoError(t, err)
	defer client.Close()

	topic, err := client.CreateTopic(ctx, "dataset-events")
	require.NoError(t, err)

	sub, err := client.CreateSubscription(ctx, "sub-id", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	publisher := &notify.PubSubPublisher{
		Client: client,
		Topic:  topic,
	}

	event := notify.Event{
		RunID:       "2d9f87e5-4d27-4fd5-a2cf-26e9a9c35a3b",
		Command:     "update",
		RecordCount: 1247,
		GeneratedAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, publisher.DatasetUpdated(ctx, event))

	// Receive the message.
	recvCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	c := make(chan *pubsub.Message, 1)
	go func() {
		_ = sub.Receive(recvCtx, func(_ context.Context, msg *pubsub.Message) {
			msg.Ack()
			c <- msg
			cancel()
		})
	}()
	msg := <-c

	assert.Equal(t, "update", msg.Attributes["command"])

	var got notify.Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, event, got)

	require.NoError(t, publisher.Close())
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()

	var publisher notify.NoopPublisher
	require.NoError(t, publisher.DatasetUpdated(context.Background(), notify.Event{}))
	require.NoError(t, publisher.Close())
}

func TestMemoryPublisherRecordsEvents(t *testing.T) {
	t.Parallel()

	publisher := notify.NewMemoryPublisher()
	first := notify.Event{RunID: "run-1", Command: "update", RecordCount: 3}
	second := notify.Event{RunID: "run-2", Command: "summaries", RecordCount: 5}

	require.NoError(t, publisher.DatasetUpdated(context.Background(), first))
	require.NoError(t, publisher.DatasetUpdated(context.Background(), second))

	events := publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0])
	assert.Equal(t, second, events[1])
	require.NoError(t, publisher.Close())
}
