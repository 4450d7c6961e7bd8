package notify

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/oshokin/gas-alarm-notifier/internal/config"
	"github.com/oshokin/gas-alarm-notifier/internal/logger"
)

const (
	// mqttConnectTimeout bounds the lazy broker connection.
	mqttConnectTimeout = 5 * time.Second

	// mqttPublishTimeout bounds each publish.
	mqttPublishTimeout = 5 * time.Second

	// mqttQoS is at-least-once: the broker acknowledges the alert.
	mqttQoS byte = 1
)

// MQTTChannel publishes the rendered message to a site-local broker topic,
// for installations with an on-premises annunciator or dashboard. It is the
// lowest-priority channel and is disabled unless a broker is configured.
type MQTTChannel struct {
	client mqtt.Client
	cfg    *config.MQTTConfig
}

// NewMQTTChannel creates the channel. The broker connection is established
// lazily on the first send, with auto-reconnect afterwards.
func NewMQTTChannel(cfg *config.MQTTConfig) *MQTTChannel {
	c := &MQTTChannel{
		cfg: cfg,
	}

	if !cfg.Configured() {
		return c
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(mqttConnectTimeout)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}

	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	c.client = mqtt.NewClient(opts)

	return c
}

// Name identifies the channel in delivery logs.
func (c *MQTTChannel) Name() string {
	return "mqtt"
}

// Send publishes text to the configured topic at QoS 1.
func (c *MQTTChannel) Send(ctx context.Context, text string) bool {
	if c.client == nil {
		logger.Debug(ctx, "MQTT channel not configured, skipping")

		return false
	}

	if !c.client.IsConnected() {
		token := c.client.Connect()
		if !token.WaitTimeout(mqttConnectTimeout) || token.Error() != nil {
			logger.ErrorKV(ctx, "MQTT broker connection failed", "broker", c.cfg.Broker, "error", token.Error())

			return false
		}
	}

	token := c.client.Publish(c.cfg.Topic, mqttQoS, false, text)
	if !token.WaitTimeout(mqttPublishTimeout) || token.Error() != nil {
		logger.ErrorKV(ctx, "MQTT publish failed", "topic", c.cfg.Topic, "error", token.Error())

		return false
	}

	return true
}

// Close disconnects from the broker if a connection was established.
func (c *MQTTChannel) Close() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
}
