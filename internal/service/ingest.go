package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/models"
)

// Topics names the transport addresses the service listens and publishes on.
type Topics struct {
	Sensors []string // sensor/<channel>
	State   string   // actuator's reported state
	Command string   // outbound command, echoed back to us
}

// DefaultTopics matches the ESP32 firmware.
func DefaultTopics() Topics {
	sensors := make([]string, 0, len(models.Channels))
	for _, ch := range models.Channels {
		sensors = append(sensors, "sensor/"+string(ch))
	}
	return Topics{
		Sensors: sensors,
		State:   "esp32/sw01/state",
		Command: "esp32/sw01/status",
	}
}

// Subscriptions lists every topic the ingest loop needs.
func (t Topics) Subscriptions() []string {
	out := make([]string, 0, len(t.Sensors)+2)
	out = append(out, t.Sensors...)
	if t.State != "" {
		out = append(out, t.State)
	}
	if t.Command != "" {
		out = append(out, t.Command)
	}
	return out
}

// Outcome classifies one inbound message.
type Outcome string

const (
	OutcomeSensor      Outcome = metrics.OutcomeSensor
	OutcomeState       Outcome = metrics.OutcomeState
	OutcomeCommandEcho Outcome = metrics.OutcomeCommandEcho
	OutcomeMalformed   Outcome = metrics.OutcomeMalformed
	OutcomeDropped     Outcome = metrics.OutcomeDropped
)

var (
	errNonFinite      = errors.New("value is not finite")
	errSwitchOutOfSet = errors.New("switch state must be 0 or 1")
	errNoChannel      = errors.New("topic has no channel segment")
	errUnknownChannel = errors.New("unknown channel")
)

// MinuteObserver is notified after every sensor-channel update.
type MinuteObserver interface {
	Observe(snap models.Snapshot) bool
}

// CommandRecorder stores command log entries without blocking.
type CommandRecorder interface {
	Record(e models.CommandEvent)
}

// Ingestor maps inbound (topic, payload) pairs onto the SnapshotStore. It is
// the only writer of the store.
type Ingestor struct {
	store     *SnapshotStore
	persister MinuteObserver
	recorder  CommandRecorder
	topics    Topics
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewIngestor(store *SnapshotStore, persister MinuteObserver, recorder CommandRecorder, topics Topics, log *logger.Logger, m *metrics.Metrics) *Ingestor {
	return &Ingestor{
		store:     store,
		persister: persister,
		recorder:  recorder,
		topics:    topics,
		log:       logger.OrNop(log),
		metrics:   m,
	}
}

// Run handles messages one at a time until ctx is done or msgs is closed.
func (i *Ingestor) Run(ctx context.Context, msgs <-chan models.InboundMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			i.Handle(msg)
		}
	}
}

// Handle applies a single message. It never fails; bad input is logged and
// leaves the snapshot untouched.
func (i *Ingestor) Handle(msg models.InboundMessage) Outcome {
	raw := strings.TrimSpace(string(msg.Payload))

	var outcome Outcome
	switch msg.Topic {
	case i.topics.State:
		outcome = i.handleState(raw)
	case i.topics.Command:
		// desired state only; the device confirms on the state topic
		i.log.Infow("switch_command_echo", "topic", msg.Topic, "value", raw)
		outcome = OutcomeCommandEcho
	default:
		outcome = i.handleSensor(msg.Topic, raw)
	}

	i.metrics.Message(string(outcome))
	return outcome
}

func (i *Ingestor) handleState(raw string) Outcome {
	v, err := parseSwitchState(raw)
	if err != nil {
		i.log.Warnw("switch_state_malformed", "err", err, "payload", raw)
		return OutcomeMalformed
	}
	prev := i.store.SetSwitchStatus(v)
	i.metrics.SwitchState(v)
	i.log.Infow("switch_state_updated", "status", v)

	if prev != v && i.recorder != nil {
		i.recorder.Record(models.CommandEvent{
			Type:        models.EventStateChanged,
			Description: fmt.Sprintf("Switch reported state %d", v),
			Metadata:    map[string]any{"from": prev, "to": v},
		})
	}
	return OutcomeState
}

func (i *Ingestor) handleSensor(topic, raw string) Outcome {
	ch, err := channelFromTopic(topic)
	if err != nil {
		i.log.Warnw("sensor_topic_dropped", "err", err, "topic", topic)
		return OutcomeDropped
	}
	v, err := parseReading(raw)
	if err != nil {
		i.log.Warnw("sensor_payload_malformed", "err", err, "topic", topic, "payload", raw)
		return OutcomeMalformed
	}

	snap, _ := i.store.SetChannel(ch, v)
	i.metrics.ChannelValue(string(ch), v)
	i.log.Debugw("sensor_value_received", "channel", ch, "value", v)

	if i.persister != nil {
		i.persister.Observe(snap)
	}
	return OutcomeSensor
}

// channelFromTopic returns the second path segment when it names a channel.
func channelFromTopic(topic string) (models.Channel, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", errNoChannel
	}
	if !models.IsChannel(parts[1]) {
		return "", fmt.Errorf("%w: %q", errUnknownChannel, parts[1])
	}
	return models.Channel(parts[1]), nil
}

func parseReading(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}

func parseSwitchState(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v != 0 && v != 1 {
		return 0, errSwitchOutOfSet
	}
	return v, nil
}
