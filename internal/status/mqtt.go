package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/model"
)

// MQTT connection and publish timeouts
const (
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 2 * time.Second
)

// MQTT publishes snapshots to <prefix>/<identityKey> as retained JSON, so a
// subscriber joining late still sees each screen's last known state.
type MQTT struct {
	client mqtt.Client
	topic  string
	log    *logrus.Entry
}

// NewMQTT connects to the broker with auto-reconnect enabled.
func NewMQTT(cfg config.StatusConfig, identityKey string, log *logrus.Logger) (*MQTT, error) {
	entry := log.WithField("component", "status.mqtt")

	prefix := cfg.MQTTTopicPrefix
	if prefix == "" {
		prefix = "signage/status"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.MQTTBroker))
	opts.SetClientID("tv-player-" + identityKey)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(c mqtt.Client) {
		entry.WithField("broker", cfg.MQTTBroker).Info("MQTT connected")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		entry.WithError(err).Warn("MQTT connection lost, auto-reconnecting")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout to %s", cfg.MQTTBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}

	return &MQTT{
		client: client,
		topic:  prefix + "/" + identityKey,
		log:    entry,
	}, nil
}

// Publish implements Reporter.
func (m *MQTT) Publish(ctx context.Context, snap model.SupervisorSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	token := m.client.Publish(m.topic, 0, true, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("mqtt publish timeout")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
