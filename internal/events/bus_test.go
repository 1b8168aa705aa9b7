package events

import "testing"

func TestPublishReachesMatchingSubscribers(t *testing.T) {
	bus := NewBus()
	themeSub := bus.Subscribe(ThemeChanged{})
	keySub := bus.Subscribe(KeyChanged{})
	defer themeSub.Close()
	defer keySub.Close()

	bus.Publish(ThemeChanged{Dark: true})

	event := (<-themeSub.C).(ThemeChanged)
	if !event.Dark {
		t.Errorf("event = %+v, want Dark=true", event)
	}

	select {
	case got := <-keySub.C:
		t.Errorf("KeyChanged subscriber received %+v", got)
	default:
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(ThemeChanged{})
	sub.Close()

	// Publishing after Close must not panic or deliver.
	bus.Publish(ThemeChanged{Dark: true})

	if _, open := <-sub.C; open {
		t.Error("channel still open after Close")
	}

	// Close is idempotent.
	sub.Close()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(KeyChanged{})
	defer sub.Close()

	// Overfill the buffer; publishes past capacity drop silently.
	for i := 0; i < 32; i++ {
		bus.Publish(KeyChanged{Key: "k", Value: "v"})
	}

	received := 0
	for {
		select {
		case <-sub.C:
			received++
		default:
			if received != 16 {
				t.Errorf("received %d events, want 16 (buffer size)", received)
			}
			return
		}
	}
}

func TestIndependentSubscribersEachReceive(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(ThemeChanged{})
	b := bus.Subscribe(ThemeChanged{})
	defer a.Close()
	defer b.Close()

	bus.Publish(ThemeChanged{Dark: true})

	if event := (<-a.C).(ThemeChanged); !event.Dark {
		t.Errorf("subscriber a got %+v", event)
	}
	if event := (<-b.C).(ThemeChanged); !event.Dark {
		t.Errorf("subscriber b got %+v", event)
	}
}
