package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Publish received packets to an MQTT broker.
 *
 * Description:	One JSON message per packet on
 *
 *			{prefix}/mrfsk/{branch}
 *
 *		Publishing doesn't hold up the receiver.  Failures are
 *		logged and otherwise ignored.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const DEFAULT_MQTT_TOPIC_PREFIX = "sdr"

var ErrMQTTNotConnected = errors.New("MQTT not connected")

type MQTTConfig struct {
	Broker      string `yaml:"broker"` // e.g. tcp://localhost:1883
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
}

type PacketMessage struct {
	Session    string    `json:"session"`
	Timestamp  time.Time `json:"timestamp"`
	Branch     string    `json:"branch"`
	PHR        string    `json:"phr"`
	Length     int       `json:"length"`
	Whitening  bool      `json:"whitening"`
	Mode       uint8     `json:"mode"`
	FCS        string    `json:"fcs"`
	CRCValid   bool      `json:"crc_ok"`
	Corrected  int       `json:"corrected_bits"`
	PayloadHex string    `json:"payload"`
}

type PacketPublisher struct {
	client  mqtt.Client
	config  MQTTConfig
	session string
}

func NewPacketMessage(p *Packet, session string, now time.Time) PacketMessage {
	var h = p.Header()
	return PacketMessage{
		Session:    session,
		Timestamp:  now.UTC(),
		Branch:     p.Branch.String(),
		PHR:        fmt.Sprintf("%04x", p.PHR),
		Length:     int(h.FrameLength),
		Whitening:  h.Whitening,
		Mode:       h.Mode,
		FCS:        h.FCSType().String(),
		CRCValid:   p.CRCValid,
		Corrected:  p.CorrectedBits,
		PayloadHex: HexBytes(p.Data()).String(),
	}
}

func packet_topic(prefix string, b Branch) string {
	if prefix == "" {
		prefix = DEFAULT_MQTT_TOPIC_PREFIX
	}
	return fmt.Sprintf("%s/mrfsk/%s", prefix, b)
}

/*------------------------------------------------------------------
 *
 * Name:	NewPacketPublisher
 *
 * Purpose:	Connect to the broker.
 *
 * Returns:	Publisher, or error if the first connection attempt
 *		failed.  Reconnection after that is automatic.
 *
 *------------------------------------------------------------------*/

func NewPacketPublisher(config MQTTConfig) (*PacketPublisher, error) {
	var session = uuid.New().String()

	var opts = mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID("mrfsk_sink_" + session[:8])

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("MQTT connected", "broker", config.Broker)
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "err", err)
	})

	var client = mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &PacketPublisher{
		client:  client,
		config:  config,
		session: session,
	}, nil
}

func (mp *PacketPublisher) Session() string {
	return mp.session
}

func (mp *PacketPublisher) Publish(p *Packet, now time.Time) error {
	if mp == nil || !mp.client.IsConnected() {
		return ErrMQTTNotConnected
	}

	var data, err = json.Marshal(NewPacketMessage(p, mp.session, now))
	if err != nil {
		return fmt.Errorf("failed to marshal packet: %w", err)
	}

	var topic = packet_topic(mp.config.TopicPrefix, p.Branch)
	var token = mp.client.Publish(topic, mp.config.QoS, mp.config.Retain, data)

	go func() {
		if token.Wait() && token.Error() != nil {
			logger.Error("MQTT publish failed", "topic", topic, "err", token.Error())
		}
	}()

	return nil
}

func (mp *PacketPublisher) Disconnect() {
	if mp != nil && mp.client != nil && mp.client.IsConnected() {
		mp.client.Disconnect(250)
	}
}
