// Package config loads a flat TOML file into the structs core/manage
// already knows how to default: ClientConfig and ConsumerConfig. It's
// the CLI entrypoint's job, not the library's -- programs embedding
// broker-client-go are free to build those structs however they like.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/relaybroker/broker-client-go/core/manage"
)

// File is the on-disk shape of a pulsarcat config file.
//
//	[client]
//	addr = "pulsar://localhost:6650"
//	dial_timeout = "5s"
//
//	[consumer]
//	topic = "persistent://public/default/my-topic"
//	name = "my-subscription"
//	sub_mode = "shared"
//	earliest = true
//	queue_size = 256
type File struct {
	Client   ClientSection   `toml:"client"`
	Consumer ConsumerSection `toml:"consumer"`
}

// ClientSection maps onto manage.ClientConfig.
type ClientSection struct {
	Addr           string `toml:"addr"`
	DialTimeout    string `toml:"dial_timeout"`
	AuthMethod     string `toml:"auth_method"`
	ProxyBrokerURL string `toml:"proxy_broker_url"`
}

// ConsumerSection maps onto manage.ConsumerConfig, minus the embedded
// ClientConfig (supplied separately via ClientSection).
type ConsumerSection struct {
	Topic     string `toml:"topic"`
	Name      string `toml:"name"`
	SubMode   string `toml:"sub_mode"` // "exclusive" | "shared" | "failover"
	Earliest  bool   `toml:"earliest"`
	QueueSize int    `toml:"queue_size"`

	NewConsumerTimeout    string `toml:"new_consumer_timeout"`
	InitialReconnectDelay string `toml:"initial_reconnect_delay"`
	MaxReconnectDelay     string `toml:"max_reconnect_delay"`
}

// Load decodes path into a File.
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	return f, nil
}

// ClientConfig builds a manage.ClientConfig from the [client] section.
func (f File) ClientConfig() (manage.ClientConfig, error) {
	cfg := manage.ClientConfig{
		Addr:           f.Client.Addr,
		AuthMethod:     f.Client.AuthMethod,
		ProxyBrokerURL: f.Client.ProxyBrokerURL,
	}
	if cfg.Addr == "" {
		return manage.ClientConfig{}, fmt.Errorf("config: client.addr is required")
	}

	d, err := parseDuration("client.dial_timeout", f.Client.DialTimeout)
	if err != nil {
		return manage.ClientConfig{}, err
	}
	cfg.DialTimeout = d

	return cfg, nil
}

// ConsumerConfig builds a manage.ConsumerConfig from the [consumer]
// section, embedding cc as its ClientConfig.
func (f File) ConsumerConfig(cc manage.ClientConfig) (manage.ConsumerConfig, error) {
	mode, err := parseSubMode(f.Consumer.SubMode)
	if err != nil {
		return manage.ConsumerConfig{}, err
	}

	cfg := manage.ConsumerConfig{
		ClientConfig: cc,
		Topic:        f.Consumer.Topic,
		Name:         f.Consumer.Name,
		SubMode:      mode,
		Earliest:     f.Consumer.Earliest,
		QueueSize:    f.Consumer.QueueSize,
	}
	if cfg.Topic == "" {
		return manage.ConsumerConfig{}, fmt.Errorf("config: consumer.topic is required")
	}

	if cfg.NewConsumerTimeout, err = parseDuration("consumer.new_consumer_timeout", f.Consumer.NewConsumerTimeout); err != nil {
		return manage.ConsumerConfig{}, err
	}
	if cfg.InitialReconnectDelay, err = parseDuration("consumer.initial_reconnect_delay", f.Consumer.InitialReconnectDelay); err != nil {
		return manage.ConsumerConfig{}, err
	}
	if cfg.MaxReconnectDelay, err = parseDuration("consumer.max_reconnect_delay", f.Consumer.MaxReconnectDelay); err != nil {
		return manage.ConsumerConfig{}, err
	}

	return cfg, nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", field, err)
	}
	return d, nil
}

func parseSubMode(raw string) (manage.SubscriptionMode, error) {
	switch raw {
	case "", "exclusive":
		return manage.SubscriptionModeExclusive, nil
	case "shared":
		return manage.SubscriptionModeShard, nil
	case "failover":
		return manage.SubscriptionModeFailover, nil
	default:
		return 0, fmt.Errorf("config: consumer.sub_mode %q not recognized", raw)
	}
}
