package mqtt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"power_monitor/internal/logger"
	"power_monitor/internal/metrics"
	"power_monitor/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// ErrNotConnected is returned by Publish while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt: not connected")

const (
	defaultPort         = "1883"
	defaultRetry        = 5 * time.Second
	defaultQueueSize    = 256
	subscribeTimeout    = 10 * time.Second
	disconnectQuiesceMs = 250
	subscribeQoS        = 0
)

// Config describes the broker connection.
type Config struct {
	Broker       string // host, host:port or tcp://host:port
	ClientID     string
	Username     string
	Password     string
	Topics       []string
	ConnectRetry time.Duration
	QueueSize    int
}

// Client keeps one broker connection alive, forwards every message on the
// subscribed topics to Messages and publishes outbound commands.
type Client struct {
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Metrics
	client  paho.Client
	msgs    chan models.InboundMessage
}

func New(cfg Config, log *logger.Logger, m *metrics.Metrics) *Client {
	return newClient(cfg, log, m, paho.NewClient)
}

func newClient(cfg Config, log *logger.Logger, m *metrics.Metrics, factory func(*paho.ClientOptions) paho.Client) *Client {
	if cfg.ConnectRetry <= 0 {
		cfg.ConnectRetry = defaultRetry
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	c := &Client{
		cfg:     cfg,
		log:     logger.OrNop(log),
		metrics: m,
		msgs:    make(chan models.InboundMessage, cfg.QueueSize),
	}
	c.client = factory(c.options())
	return c
}

func (c *Client) options() *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(BrokerURL(c.cfg.Broker))
	opts.SetClientID(c.cfg.ClientID)
	opts.SetUsername(c.cfg.Username)
	opts.SetPassword(c.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(c.cfg.ConnectRetry)

	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		c.metrics.TransportConnected(false)
		c.log.Warnw("mqtt_connection_lost", "err", err)
	})
	opts.SetOnConnectHandler(c.onConnect)
	return opts
}

// BrokerURL fills in the tcp scheme and the default port.
func BrokerURL(broker string) string {
	broker = strings.TrimSpace(broker)
	if strings.Contains(broker, "://") {
		return broker
	}
	if _, _, err := net.SplitHostPort(broker); err != nil {
		broker = net.JoinHostPort(broker, defaultPort)
	}
	return "tcp://" + broker
}

// Messages is the inbound queue drained by the ingest loop.
func (c *Client) Messages() <-chan models.InboundMessage {
	return c.msgs
}

// onConnect (re)subscribes after every successful connect. Paho runs it on its
// own goroutine so waiting on tokens here is fine.
func (c *Client) onConnect(client paho.Client) {
	c.metrics.TransportConnected(true)
	c.log.Infow("mqtt_connected", "broker", c.cfg.Broker)

	for _, topic := range c.cfg.Topics {
		token := client.Subscribe(topic, subscribeQoS, c.onMessage)
		if !token.WaitTimeout(subscribeTimeout) {
			c.log.Errorw("mqtt_subscribe_timeout", "topic", topic)
			continue
		}
		if err := token.Error(); err != nil {
			c.log.Errorw("mqtt_subscribe_failed", "topic", topic, "err", err)
			continue
		}
		c.log.Infow("mqtt_subscribed", "topic", topic)
	}
}

// onMessage never blocks the paho router; a full queue drops the message.
func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	in := models.InboundMessage{
		Topic:   msg.Topic(),
		Payload: append([]byte(nil), msg.Payload()...),
	}
	select {
	case c.msgs <- in:
	default:
		c.metrics.Message(metrics.OutcomeOverflow)
		c.log.Warnw("mqtt_queue_full", "topic", in.Topic)
	}
}

// Run connects and keeps the session open until ctx is done. Paho retries the
// initial connect and reconnects on its own.
func (c *Client) Run(ctx context.Context) error {
	c.log.Infow("mqtt_connecting", "broker", BrokerURL(c.cfg.Broker), "client_id", c.cfg.ClientID)

	token := c.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
	case <-ctx.Done():
	}

	<-ctx.Done()
	c.client.Disconnect(disconnectQuiesceMs)
	c.metrics.TransportConnected(false)
	c.log.Infow("mqtt_disconnected")
	return nil
}

// Publish sends payload and waits for the broker acknowledgement required by
// qos, or for ctx.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte, qos byte, retain bool) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retain, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish %s: %w", topic, ctx.Err())
	}
}
