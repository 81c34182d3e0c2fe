package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfrund/eventnotify/cmd/eventnotify/internal/display"
	"github.com/nfrund/eventnotify/internal/notification"
	"github.com/nfrund/eventnotify/internal/pubsub"
)

var (
	simulateTopicsFile string
	simulateEventsFile string
	simulateWait       time.Duration
	simulateFormat     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Publish declared events to declared topics over an in-memory bus",
	Long: `Register every topic from --topics, publish every event from --events and
report which registration received which event.

Events go through the same in-memory bus the notifier uses in production.
Set NOTIFY_TRACING_ENABLED=true to export publish and delivery spans.

Examples:
  eventnotify simulate --topics topics.yaml --events events.yaml
  eventnotify simulate --topics topics.yaml --events events.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: simulateHandler,
}

// deliveryLog collects deliveries from concurrent consumers.
type deliveryLog struct {
	mu         sync.Mutex
	deliveries []display.DeliveryDisplay
}

func (l *deliveryLog) handler(name string, topic notification.Topic) notification.EventHandler {
	return func(_ context.Context, event notification.Event) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.deliveries = append(l.deliveries, display.DeliveryDisplay{
			Registration: name,
			Topic:        topic.String(),
			Event:        event.String(),
		})
		return nil
	}
}

func (l *deliveryLog) count() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.deliveries))
}

func (l *deliveryLog) sorted() []display.DeliveryDisplay {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]display.DeliveryDisplay(nil), l.deliveries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Registration != out[j].Registration {
			return out[i].Registration < out[j].Registration
		}
		return out[i].Event < out[j].Event
	})
	return out
}

func simulateHandler(cmd *cobra.Command, args []string) error {
	if err := validFormat(simulateFormat); err != nil {
		return err
	}

	topicDecls, err := notification.LoadTopicDeclarations(appFs, simulateTopicsFile)
	if err != nil {
		return err
	}
	eventDecls, err := notification.LoadEventDeclarations(appFs, simulateEventsFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	tracer, shutdown, err := pubsub.SetupOTel(ctx, appConfig.Tracing)
	if err != nil {
		return err
	}
	defer shutdown()

	var bus *pubsub.WatermillBridge
	if appConfig.Tracing.Enabled {
		bus = pubsub.NewWatermillBridgeWithTracer(tracer)
	} else {
		bus = pubsub.NewWatermillBridge()
	}
	defer bus.Close()

	notifier := notification.NewNotifier(bus,
		notification.WithLogger(slog.Default()),
		notification.WithChannelPrefix(appConfig.ChannelPrefix),
	)

	errOut := cmd.ErrOrStderr()
	received := &deliveryLog{}
	for i, decl := range topicDecls {
		topic, err := decl.Topic()
		if err != nil {
			fmt.Fprintf(errOut, "❌ Skipping topic %s: %v\n", declName(decl.Name, i), err)
			continue
		}
		reg := notifier.RegisterTopic(topic)
		consumer := notification.NewConsumer(reg, bus, received.handler(declName(decl.Name, i), topic))
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("start consumer for %s: %w", reg.ID(), err)
		}
		defer consumer.Stop()
	}

	for i, decl := range eventDecls {
		event, err := decl.Event()
		if err != nil {
			fmt.Fprintf(errOut, "❌ Skipping event #%d: %v\n", i+1, err)
			continue
		}
		if err := notifier.Publish(ctx, event); err != nil {
			slog.Error("Failed to publish event", "event", event.String(), "error", err)
		}
	}

	stats := notifier.Stats()
	deadline := time.Now().Add(simulateWait)
	for received.count() < stats.Deliveries && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	deliveries := received.sorted()
	out := cmd.OutOrStdout()
	if simulateFormat == "json" {
		return display.WriteJSON(out, deliveries)
	}

	display.WriteDeliveriesTable(out, deliveries)
	fmt.Fprintf(out, "\n%d topics, %d registrations, %d events published, %d deliveries\n",
		stats.Topics, stats.Registrations, stats.Published, len(deliveries))
	return nil
}

func declName(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index+1)
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateTopicsFile, "topics", "", "YAML file declaring topics")
	simulateCmd.Flags().StringVar(&simulateEventsFile, "events", "", "YAML file declaring events")
	simulateCmd.Flags().DurationVar(&simulateWait, "wait", 2*time.Second, "Maximum time to wait for deliveries")
	simulateCmd.Flags().StringVarP(&simulateFormat, "format", "f", "table", "Output format (table, json)")
	_ = simulateCmd.MarkFlagRequired("topics")
	_ = simulateCmd.MarkFlagRequired("events")
}
