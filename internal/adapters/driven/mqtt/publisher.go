// Package mqtt provides the broker-facing publisher adapter.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/pulsebridge/pulsebridge-cli/internal/core/ports/driven"
	"github.com/pulsebridge/pulsebridge-cli/internal/logger"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 10 * time.Second

	// statusTopic (under the prefix) carries the availability state.
	statusTopic = "status"
)

// Config holds broker connection settings.
type Config struct {
	Host        string
	Port        int
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher delivers messages over MQTT. Payloads go to
// "<prefix>/<topic>"; when attributes are supplied a companion JSON
// message goes to "<prefix>/<topic>/attributes" on a best-effort basis.
// The broker holds a retained "Offline" will on the status topic so
// consumers see availability flip when the process dies.
type Publisher struct {
	client paho.Client
	prefix string
}

// Connect dials the broker and announces "Online" on the status topic.
func Connect(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetWill(expandTopic(cfg.TopicPrefix, statusTopic), "Offline", 1, true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("timed out connecting to broker %s:%d", cfg.Host, cfg.Port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to broker: %w", err)
	}

	p := &Publisher{client: client, prefix: cfg.TopicPrefix}
	if err := p.publishRaw(expandTopic(cfg.TopicPrefix, statusTopic), "Online", true); err != nil {
		logger.Warn("announcing online status: %v", err)
	}
	return p, nil
}

// Publish delivers one message. The attributes companion rides along
// on every attempt, even when the primary delivery fails; its own
// failure is logged, never returned.
func (p *Publisher) Publish(_ context.Context, topic, payload string, attributes map[string]any) error {
	full := expandTopic(p.prefix, topic)
	err := p.publishRaw(full, payload, false)

	if len(attributes) > 0 {
		encoded, encErr := json.Marshal(attributes)
		if encErr != nil {
			logger.Warn("encoding attributes for %s: %v", full, encErr)
		} else if pubErr := p.publishRaw(full+"/attributes", string(encoded), false); pubErr != nil {
			logger.Warn("publishing attributes for %s: %v", full, pubErr)
		}
	}
	return err
}

func (p *Publisher) publishRaw(topic, payload string, retained bool) error {
	token := p.client.Publish(topic, 1, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close announces "Offline" and disconnects.
func (p *Publisher) Close() {
	if err := p.publishRaw(expandTopic(p.prefix, statusTopic), "Offline", true); err != nil {
		logger.Warn("announcing offline status: %v", err)
	}
	p.client.Disconnect(250)
}

// expandTopic joins the prefix and topic. An empty prefix yields the
// bare topic.
func expandTopic(prefix, topic string) string {
	if prefix == "" {
		return topic
	}
	return prefix + "/" + topic
}
