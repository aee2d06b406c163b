package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Glyph uint32
	Owner string
}

func TestBroker_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBroker[payload]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish("glyph_mint", payload{Glyph: 1, Owner: "alice"})

	select {
	case ev := <-ch:
		require.Equal(t, EventType("glyph_mint"), ev.Type)
		require.Equal(t, payload{Glyph: 1, Owner: "alice"}, ev.Payload)
		require.WithinDuration(t, time.Now(), ev.Timestamp, time.Second)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroker_MultipleSubscribersAllReceive(t *testing.T) {
	b := NewBroker[payload]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := b.Subscribe(ctx)
	ch2 := b.Subscribe(ctx)
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish("color_claim", payload{Glyph: 0, Owner: "bob"})

	for _, ch := range []<-chan Event[payload]{ch1, ch2} {
		select {
		case ev := <-ch:
			require.Equal(t, "bob", ev.Payload.Owner)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBroker_SubscribeCancelledContextCleansUp(t *testing.T) {
	b := NewBroker[payload]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	// The cleanup goroutine closes the channel.
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, b.SubscriberCount())
}

func TestBroker_PublishDropsWhenSubscriberFull(t *testing.T) {
	b := NewBrokerWithBuffer[payload](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)

	// Second publish must not block even though nobody is draining.
	done := make(chan struct{})
	go func() {
		b.Publish("offer_sell_glyph", payload{Glyph: 1})
		b.Publish("offer_sell_glyph", payload{Glyph: 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	ev := <-ch
	require.Equal(t, uint32(1), ev.Payload.Glyph)
}

func TestBroker_PublishAfterCloseIsNoop(t *testing.T) {
	b := NewBroker[payload]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Close()

	// Channels are closed; publishing afterwards must not panic.
	b.Publish("royalties_claim", payload{})

	_, open := <-ch
	require.False(t, open, "subscriber channel should be closed after Close")
}

func TestBroker_SubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	b := NewBroker[payload]()
	b.Close()

	ch := b.Subscribe(context.Background())
	_, open := <-ch
	require.False(t, open)
}
