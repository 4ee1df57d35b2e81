package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

const mqttQoS = 1

// mqttSource subscribes to machine telemetry topics and serves the latest
// record per topic on Fetch.
type mqttSource struct {
	client pahomqtt.Client
	topic  string
	log    *zap.Logger

	mu     sync.RWMutex
	latest *latestByKey
}

func NewMqttSource(cfg *oeeMonitor.Config, log *zap.Logger) (*mqttSource, error) {
	s := &mqttSource{
		topic:  cfg.MqttTopic,
		log:    log.Named("mqtt"),
		latest: newLatestByKey(),
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.MqttBroker).
		SetClientID(cfg.MqttClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c pahomqtt.Client) {
			// re-subscribe after reconnects
			if err := s.subscribe(c); err != nil {
				s.log.Error("mqtt subscribe failed", zap.Error(err))
			}
		})

	client := pahomqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	s.client = client
	return s, nil
}

func (s *mqttSource) subscribe(c pahomqtt.Client) error {
	token := c.Subscribe(s.topic, mqttQoS, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		s.handle(msg.Topic(), msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, token.Error())
	}
	s.log.Info("mqtt subscribed", zap.String("topic", s.topic), zap.Int("qos", mqttQoS))
	return nil
}

func (s *mqttSource) handle(topic string, payload []byte) {
	if !json.Valid(payload) {
		s.log.Warn("mqtt: invalid json", zap.String("topic", topic))
		return
	}
	key := topic
	if code, ok := TopicToMachineCode(topic); ok {
		key = code
	}
	s.mu.Lock()
	s.latest.put(key, payload)
	s.mu.Unlock()
}

func (s *mqttSource) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.client != nil && !s.client.IsConnectionOpen() {
		return nil, fmt.Errorf("%w: mqtt broker connection lost", models.ErrTransientFetch)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.records(), nil
}

func (s *mqttSource) Close() error {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	return nil
}

// TopicToMachineCode extracts the machine code from "machines/{code}/telemetry".
func TopicToMachineCode(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "machines" || parts[2] != "telemetry" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
