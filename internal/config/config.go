// Package config loads the gober-server YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/field4d/gober/internal/options"
)

// Defaults applied by Load.
const (
	DefaultListen   = "[::]:1234"
	DefaultLogLevel = "info"
	DefaultBaud     = 115200
	DefaultTopic    = "field4d/records"
	DefaultClientID = "gober"
)

type Config struct {
	Listen        string `yaml:"listen"`
	SummaryListen string `yaml:"summary_listen"`
	Mode          string `yaml:"mode"`
	ReplyAck      bool   `yaml:"reply_ack"`
	LogLevel      string `yaml:"log_level"`
	Sinks         Sinks  `yaml:"sinks"`
}

type Sinks struct {
	Console *bool    `yaml:"console"`
	Serial  *Serial  `yaml:"serial"`
	MQTT    *MQTT    `yaml:"mqtt"`
	Archive *Archive `yaml:"archive"`
}

type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
}

type Archive struct {
	Path string `yaml:"path"`
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	conf := &Config{}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	conf.applyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	conf := &Config{}
	conf.applyDefaults()
	return conf
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Sinks.Console == nil {
		on := true
		c.Sinks.Console = &on
	}
	if s := c.Sinks.Serial; s != nil && s.Baud == 0 {
		s.Baud = DefaultBaud
	}
	if m := c.Sinks.MQTT; m != nil {
		if m.Topic == "" {
			m.Topic = DefaultTopic
		}
		if m.ClientID == "" {
			m.ClientID = DefaultClientID
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("listen %q: %w", c.Listen, err)
	}
	if c.SummaryListen != "" {
		if _, _, err := net.SplitHostPort(c.SummaryListen); err != nil {
			return fmt.Errorf("summary_listen %q: %w", c.SummaryListen, err)
		}
		if c.SummaryListen == c.Listen {
			return errors.New("summary_listen must differ from listen")
		}
	}
	if _, err := options.ParseMode(c.Mode); err != nil {
		return err
	}
	if s := c.Sinks.Serial; s != nil {
		if s.Device == "" {
			return errors.New("sinks.serial.device is required")
		}
		if s.Baud < 0 {
			return fmt.Errorf("sinks.serial.baud %d is negative", s.Baud)
		}
	}
	if m := c.Sinks.MQTT; m != nil {
		if m.Broker == "" {
			return errors.New("sinks.mqtt.broker is required")
		}
		if m.QoS > 2 {
			return fmt.Errorf("sinks.mqtt.qos %d out of range", m.QoS)
		}
	}
	if a := c.Sinks.Archive; a != nil && a.Path == "" {
		return errors.New("sinks.archive.path is required")
	}
	return nil
}

// RenderMode returns the parsed mode. Validate has already accepted it.
func (c *Config) RenderMode() options.Mode {
	mode, _ := options.ParseMode(c.Mode)
	return mode
}

// ConsoleEnabled reports whether records go to stdout.
func (c *Config) ConsoleEnabled() bool {
	return c.Sinks.Console == nil || *c.Sinks.Console
}
