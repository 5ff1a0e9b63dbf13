package sink

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of mqtt.Client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOptions configures DialMQTT.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// MQTT publishes each output under <topic>/<kind>.
type MQTT struct {
	client Publisher
	topic  string
	qos    byte
}

// DialMQTT connects to the broker and returns a ready sink.
func DialMQTT(opts MQTTOptions, log *logrus.Entry) (*MQTT, error) {
	mopt := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetCleanSession(true).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(30 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.WithField("broker", opts.Broker).Info("mqtt connect")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("mqtt disconnect")
		})
	client := mqtt.NewClient(mopt)
	token := client.Connect()
	if err := waitConnect(client, token, opts.Broker); err != nil {
		return nil, err
	}
	return NewMQTT(client, opts.Topic, opts.QoS), nil
}

// waitConnect waits for the connect token. On failure the client is
// disconnected so it stops reconnecting in the background.
func waitConnect(client Publisher, token mqtt.Token, broker string) error {
	if !token.WaitTimeout(publishTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return nil
}

// NewMQTT wraps a connected client.
func NewMQTT(client Publisher, topic string, qos byte) *MQTT {
	return &MQTT{client: client, topic: topic, qos: qos}
}

func (m *MQTT) Emit(_ context.Context, out Output) error {
	topic := fmt.Sprintf("%s/%s", m.topic, out.Kind)
	token := m.client.Publish(topic, m.qos, false, []byte(out.Text))
	if m.qos == 0 {
		return token.Error()
	}
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	return token.Error()
}

func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
