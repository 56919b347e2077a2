package bus

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Topic layout: seat/{seat_id}/{event}
const (
	eventBookingStatus = "booking_status" // backend -> hardware
	EventPresence      = "ir"             // hardware -> backend
	EventCheckin       = "check-in"       // hardware -> backend
)

type Client struct {
	client mqtt.Client
	log    *zap.Logger
}

// Connect dials the broker and blocks until the connection is up.
// Subscriptions are registered separately via Subscribe, after recovery
// has finished.
func Connect(cfg utils.MQTTConfig, log *zap.Logger) (*Client, error) {
	scheme := "tcp"
	if cfg.UseTLS {
		scheme = "ssl"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)).
		SetClientID("seat-reservation-backend").
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt broker: %w", token.Error())
	}

	log.Info("Connected to MQTT broker",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	return &Client{
		client: client,
		log:    log.With(zap.String("service", "mqtt")),
	}, nil
}

// PublishSeatStatus broadcasts the booking-driven seat state to the
// hardware. Fire and forget: a failed publish is logged, never surfaced;
// the periodic status broadcast resynchronizes devices that missed it.
func (c *Client) PublishSeatStatus(seatID string, status entity.SeatStatus) {
	topic := fmt.Sprintf("seat/%s/%s", seatID, eventBookingStatus)
	token := c.client.Publish(topic, 0, false, string(status))
	go func() {
		if token.Wait() && token.Error() != nil {
			c.log.Warn("Failed to publish seat status",
				zap.Error(token.Error()),
				zap.String("topic", topic),
			)
		}
	}()
}

// Subscribe starts delivery of hardware events into enqueue.
func (c *Client) Subscribe(enqueue func(Event)) error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		ev, ok := parseTopic(msg.Topic())
		if !ok {
			c.log.Warn("Ignoring message on unexpected topic", zap.String("topic", msg.Topic()))
			return
		}
		ev.Payload = strings.TrimSpace(string(msg.Payload()))
		enqueue(ev)
	}

	for _, filter := range []string{"seat/+/" + EventPresence, "seat/+/" + EventCheckin} {
		if token := c.client.Subscribe(filter, 1, handler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("subscribe %s: %w", filter, token.Error())
		}
	}

	c.log.Info("Subscribed to hardware topics")
	return nil
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
	c.log.Info("Disconnected from MQTT broker")
}

func parseTopic(topic string) (Event, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "seat" || parts[1] == "" {
		return Event{}, false
	}
	return Event{SeatID: parts[1], Name: parts[2]}, true
}
