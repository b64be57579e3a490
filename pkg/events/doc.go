/*
Package events provides an in-memory event broker for storage changes.

The router publishes an event whenever the set of active backends changes
or a mutating call succeeds (volume created or deleted, cache policy
changed, export created or removed). Subscribers receive every event on a
buffered channel; a slow subscriber misses events rather than stalling the
router.

# Usage

	broker := events.NewBroker(nil)
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	r := router.New(registry, router.WithEvents(broker))

	for event := range sub {
		fmt.Println(event.Type, event.SystemID, event.Message)
	}

Publishing never blocks. Events published before Start are queued up to
the broker buffer; events published after Stop are dropped.
*/
package events
