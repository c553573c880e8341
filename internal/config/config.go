package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"power_monitor/internal/models"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: mqtt.broker -> POWER_MONITOR_MQTT_BROKER.
const EnvPrefix = "POWER_MONITOR"

type Config struct {
	Port     string         `mapstructure:"port"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Switch   SwitchConfig   `mapstructure:"switch"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type MQTTConfig struct {
	Broker       string        `mapstructure:"broker"`
	ClientID     string        `mapstructure:"client_id"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	SensorTopics []string      `mapstructure:"sensor_topics"`
	StateTopic   string        `mapstructure:"state_topic"`
	CommandTopic string        `mapstructure:"command_topic"`
	ConnectRetry time.Duration `mapstructure:"connect_retry"`
	QueueSize    int           `mapstructure:"queue_size"`
}

type SwitchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Device   string        `mapstructure:"device"`
}

type ForecastConfig struct {
	Method   string `mapstructure:"method"`
	Timezone string `mapstructure:"timezone"`
}

type AuthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

func defaultSensorTopics() []string {
	topics := make([]string, 0, len(models.Channels))
	for _, ch := range models.Channels {
		topics = append(topics, "sensor/"+string(ch))
	}
	return topics
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "4000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "power_monitor.db")
	v.SetDefault("mqtt.broker", "broker.hivemq.com:1883")
	v.SetDefault("mqtt.client_id", "power-monitor")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.sensor_topics", defaultSensorTopics())
	v.SetDefault("mqtt.state_topic", "esp32/sw01/state")
	v.SetDefault("mqtt.command_topic", "esp32/sw01/status")
	v.SetDefault("mqtt.connect_retry", "5s")
	v.SetDefault("mqtt.queue_size", 256)
	v.SetDefault("switch.debounce", "1s")
	v.SetDefault("switch.device", "sw01")
	v.SetDefault("forecast.method", "daily")
	v.SetDefault("forecast.timezone", "Local")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "12h")
}

// Load reads config.yml from the given directories (first match wins), then
// applies POWER_MONITOR_* environment overrides. A missing file is not an
// error; every key has a default.
func Load(v *viper.Viper, paths ...string) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.MQTT.Broker) == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if c.MQTT.CommandTopic == "" {
		errs = append(errs, errors.New("mqtt.command_topic is required"))
	}
	if c.Switch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("switch.debounce must not be negative, got %s", c.Switch.Debounce))
	}
	if c.Auth.Enabled && c.Auth.SigningKey == "" {
		errs = append(errs, errors.New("auth.signing_key is required when auth.enabled is true"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves forecast.timezone. Empty means the host zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Forecast.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("forecast.timezone: %w", err)
	}
	return loc, nil
}
