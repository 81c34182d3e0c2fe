package notification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/eventnotify/internal/notification"
	"github.com/nfrund/eventnotify/internal/pubsub"
)

type eventCollector struct {
	mu     sync.Mutex
	events []notification.Event
}

func (c *eventCollector) handle(_ context.Context, event notification.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *eventCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestConsumer_ReceivesMatchingEvents(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	n := notification.NewNotifier(bus)
	scenarioReg, err := n.Register("scenario", "", "", "")
	require.NoError(t, err)
	taskReg, err := n.Register("task", "", "", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scenarios := &eventCollector{}
	tasks := &eventCollector{}
	scenarioConsumer := notification.NewConsumer(scenarioReg, bus, scenarios.handle)
	taskConsumer := notification.NewConsumer(taskReg, bus, tasks.handle)
	require.NoError(t, scenarioConsumer.Start(ctx))
	require.NoError(t, taskConsumer.Start(ctx))
	defer scenarioConsumer.Stop()
	defer taskConsumer.Stop()

	for _, id := range []string{"SCENARIO_1", "SCENARIO_2"} {
		require.NoError(t, n.Publish(ctx, mustEvent(t, notification.EventConfig{
			EntityType: notification.EntityTypeScenario,
			Operation:  notification.OperationCreation,
			EntityID:   id,
		})))
	}

	assert.Eventually(t, func() bool { return scenarios.count() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, tasks.count())

	scenarios.mu.Lock()
	defer scenarios.mu.Unlock()
	ids := []string{scenarios.events[0].EntityID(), scenarios.events[1].EntityID()}
	assert.ElementsMatch(t, []string{"SCENARIO_1", "SCENARIO_2"}, ids)
}

func TestConsumer_StartTwice(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	reg := notification.NewNotifier(bus).RegisterTopic(notification.Topic{})
	c := notification.NewConsumer(reg, bus, (&eventCollector{}).handle)

	require.NoError(t, c.Start(context.Background()))
	assert.Error(t, c.Start(context.Background()))
	c.Stop()
	c.Stop()
}
