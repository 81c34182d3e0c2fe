package notification_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/eventnotify/internal/notification"
	"github.com/nfrund/eventnotify/internal/pubsub"
)

// mockPublisher implements pubsub.Publisher for testing
type mockPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	failOn   string
}

func (m *mockPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && msg.RegistrationID == m.failOn {
		return errors.New("bus unavailable")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPublisher) Close() error {
	return nil
}

func (m *mockPublisher) registrationIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		ids = append(ids, msg.RegistrationID)
	}
	return ids
}

func mustEvent(t *testing.T, cfg notification.EventConfig) notification.Event {
	t.Helper()
	event, err := notification.NewEvent(cfg)
	require.NoError(t, err)
	return event
}

func TestNotifier_Register(t *testing.T) {
	n := notification.NewNotifier(&mockPublisher{})

	reg, err := n.Register("scenario", "SCENARIO_1", "update", "status")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reg.ID(), "REGISTRATION_"))
	assert.Equal(t, notification.DefaultChannelPrefix+"."+reg.ID(), reg.Channel())
	assert.Equal(t, notification.MustTopic("scenario", "SCENARIO_1", "update", "status"), reg.Topic())
	assert.False(t, reg.RegisteredAt().IsZero())

	found, ok := n.Get(reg.ID())
	assert.True(t, ok)
	assert.Same(t, reg, found)

	_, err = n.Register("", "", "creation", "status")
	assert.ErrorIs(t, err, notification.ErrInvalidEventAttributeName)
	assert.Equal(t, 1, n.Stats().Registrations)
}

func TestNotifier_SharedTopic(t *testing.T) {
	n := notification.NewNotifier(&mockPublisher{}, notification.WithChannelPrefix("events"))

	r1, err := n.Register("task", "", "creation", "")
	require.NoError(t, err)
	r2, err := n.Register("TASK", "", "CREATION", "")
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID(), r2.ID())
	assert.True(t, strings.HasPrefix(r1.Channel(), "events."))

	topics := n.Topics()
	require.Len(t, topics, 1)
	assert.Len(t, n.Registrations(topics[0]), 2)

	require.NoError(t, n.Unregister(r1.ID()))
	assert.Len(t, n.Topics(), 1)
	require.NoError(t, n.Unregister(r2.ID()))
	assert.Empty(t, n.Topics())

	err = n.Unregister(r2.ID())
	assert.ErrorIs(t, err, notification.ErrRegistrationNotFound)
}

func TestNotifier_PublishMatching(t *testing.T) {
	pub := &mockPublisher{}
	n := notification.NewNotifier(pub)

	all, _ := n.Register("", "", "", "")
	scenarios, _ := n.Register("scenario", "", "", "")
	oneScenario, _ := n.Register("", "SCENARIO_1", "", "")
	updates, _ := n.Register("", "", "update", "")
	statusUpdates, _ := n.Register("", "", "update", "status")
	nameUpdates, _ := n.Register("", "", "update", "name")
	tasks, _ := n.Register("task", "", "", "")

	tests := []struct {
		name  string
		event notification.EventConfig
		want  []string
	}{
		{
			name: "scenario status update",
			event: notification.EventConfig{
				EntityType:    notification.EntityTypeScenario,
				Operation:     notification.OperationUpdate,
				EntityID:      "SCENARIO_1",
				AttributeName: "status",
			},
			want: []string{all.ID(), scenarios.ID(), oneScenario.ID(), updates.ID(), statusUpdates.ID()},
		},
		{
			name: "other scenario creation",
			event: notification.EventConfig{
				EntityType: notification.EntityTypeScenario,
				Operation:  notification.OperationCreation,
				EntityID:   "SCENARIO_2",
			},
			want: []string{all.ID(), scenarios.ID()},
		},
		{
			name: "update without attribute matches every update topic",
			event: notification.EventConfig{
				EntityType: notification.EntityTypeTask,
				Operation:  notification.OperationUpdate,
			},
			want: []string{all.ID(), updates.ID(), statusUpdates.ID(), nameUpdates.ID(), tasks.ID()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub.mu.Lock()
			pub.messages = nil
			pub.mu.Unlock()

			require.NoError(t, n.Publish(context.Background(), mustEvent(t, tt.event)))
			assert.ElementsMatch(t, tt.want, pub.registrationIDs())
		})
	}
}

func TestNotifier_PublishMessage(t *testing.T) {
	pub := &mockPublisher{}
	n := notification.NewNotifier(pub)
	reg, err := n.Register("job", "", "deletion", "")
	require.NoError(t, err)

	event := mustEvent(t, notification.EventConfig{
		EntityType: notification.EntityTypeJob,
		Operation:  notification.OperationDeletion,
		EntityID:   "JOB_3",
	})
	require.NoError(t, n.Publish(context.Background(), event))

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, reg.Channel(), msg.Topic)
	assert.Equal(t, reg.ID(), msg.RegistrationID)
	assert.Equal(t, "JOB", msg.Metadata["entity_type"])
	assert.Equal(t, "DELETION", msg.Metadata["operation"])

	decoded, err := notification.UnmarshalEvent(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, "JOB_3", decoded.EntityID())

	stats := n.Stats()
	assert.Equal(t, int64(1), stats.Published)
	assert.Equal(t, int64(1), stats.Deliveries)
	assert.Equal(t, 1, stats.Topics)
}

func TestNotifier_PublishCollectsErrors(t *testing.T) {
	pub := &mockPublisher{}
	n := notification.NewNotifier(pub)

	failing, _ := n.Register("", "", "", "")
	healthy, _ := n.Register("cycle", "", "", "")
	pub.failOn = failing.ID()

	err := n.Publish(context.Background(), mustEvent(t, notification.EventConfig{
		EntityType: notification.EntityTypeCycle,
		Operation:  notification.OperationCreation,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), failing.ID())
	assert.Equal(t, []string{healthy.ID()}, pub.registrationIDs())
	assert.Equal(t, int64(1), n.Stats().Deliveries)
}

func TestNotifier_ConcurrentRegistration(t *testing.T) {
	n := notification.NewNotifier(&mockPublisher{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := n.Register("sequence", "", "update", "tasks")
			if assert.NoError(t, err) {
				assert.NoError(t, n.Unregister(reg.ID()))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, notification.NotifierStats{}, n.Stats())
}
