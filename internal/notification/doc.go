// Package notification provides validated subscription topics for entity
// lifecycle events and a notifier that fans published events out to the
// registrations whose topics match.
//
// A Topic filters events by entity type, entity id, operation and attribute
// name. Every field is optional; construction normalizes the raw strings and
// rejects combinations that can never match a real event:
//
//	topic, err := notification.NewTopic("scenario", "SCENARIO_abc123", "update", "status")
//	if err != nil {
//		// errors.Is(err, notification.ErrInvalidEntityType), ...
//	}
//
// Topics are comparable values and can be used directly as map keys.
//
// Registrations are made through a Notifier, which publishes matching events
// on a per-registration pub/sub channel:
//
//	notifier := notification.NewNotifier(bus)
//	reg, err := notifier.Register("task", "", "creation", "")
//	consumer := notification.NewConsumer(reg, bus, handler)
//	err = consumer.Start(ctx)
//	err = notifier.Publish(ctx, event)
package notification
